package task_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
)

func TestParseImportFile(t *testing.T) {
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		data string
		want []task.CreateInput
	}{
		{
			name: "yaml list",
			data: `
- title: Write docs
  status: to-do
  priority: high
- title: Ship
  dueDate: 2026-11-01T00:00:00Z
`,
			want: []task.CreateInput{
				{Title: "Write docs", Status: "to-do", Priority: "high"},
				{Title: "Ship", DueDate: &due},
			},
		},
		{
			name: "yaml mapping",
			data: "tasks:\n  - title: One\n    userId: u1\n",
			want: []task.CreateInput{{Title: "One", UserID: "u1"}},
		},
		{
			name: "json",
			data: `{"tasks": [{"title": "From JSON", "description": "d", "status": "backlog"}]}`,
			want: []task.CreateInput{{Title: "From JSON", Description: "d", Status: "backlog"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := task.ParseImportFile([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseImportFile_Invalid(t *testing.T) {
	for _, data := range []string{"", "just a string", "- [unclosed"} {
		_, err := task.ParseImportFile([]byte(data))
		assert.True(t, cerr.IsCode(err, cerr.InvalidArgument), "%q", data)
	}
}
