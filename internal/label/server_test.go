package label_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/database/dbtest"
	"github.com/kazz187/taskboard/internal/label"
	labelrepo "github.com/kazz187/taskboard/internal/label/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/cerr"
)

func TestServer_CRUD(t *testing.T) {
	ctx := context.Background()
	s := label.NewServer(labelrepo.NewGormRepository(dbtest.New(t)), nil, nil)

	_, err := s.Create(ctx, label.CreateInput{Name: "bug"})
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	_, err = s.Create(ctx, label.CreateInput{TaskID: "t1"})
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))

	l, err := s.Create(ctx, label.CreateInput{Name: "bug", TaskID: "t1", WorkspaceID: "w1"})
	require.NoError(t, err)
	assert.Equal(t, "#6b7280", l.Color)

	byTask, err := s.ListByTask(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, byTask, 1)
	byWorkspace, err := s.ListByWorkspace(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, byWorkspace, 1)

	color := "#ff0000"
	updated, err := s.Update(ctx, l.ID, label.UpdateInput{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", updated.Color)
	assert.Equal(t, "bug", updated.Name)

	_, err = s.Delete(ctx, l.ID)
	require.NoError(t, err)
	_, err = s.Delete(ctx, l.ID)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))

	empty, err := s.ListByTask(ctx, "t1")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
