package task

import (
	"sort"

	"github.com/kazz187/taskboard/internal/project"
)

type Column struct {
	ID    Status              `json:"id"`
	Name  string              `json:"name"`
	Tasks []*TaskWithAssignee `json:"tasks"`
}

// Board is the columnar view of one project.
type Board struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Slug         string              `json:"slug"`
	Icon         string              `json:"icon"`
	Description  string              `json:"description"`
	IsPublic     bool                `json:"isPublic"`
	WorkspaceID  string              `json:"workspaceId"`
	Columns      []Column            `json:"columns"`
	PausedTasks  []*TaskWithAssignee `json:"pausedTasks"`
	PlannedTasks []*TaskWithAssignee `json:"plannedTasks"`
}

var boardColumns = []struct {
	status Status
	name   string
}{
	{StatusBacklog, "Backlog"},
	{StatusToDo, "To Do"},
	{StatusInProgress, "In Progress"},
	{StatusTechnicalReview, "Technical Review"},
	{StatusPaused, "Paused"},
	{StatusCompleted, "Completed"},
}

// BuildBoard groups tasks into the fixed columns. Within a column tasks are
// ordered by position, then creation time, then id. Tasks with a status that
// has no column are left out.
func BuildBoard(p *project.Project, tasks []*TaskWithAssignee) *Board {
	sorted := make([]*TaskWithAssignee, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	byStatus := make(map[Status][]*TaskWithAssignee, len(boardColumns))
	for _, t := range sorted {
		byStatus[t.Status] = append(byStatus[t.Status], t)
	}

	board := &Board{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Icon:         p.Icon,
		Description:  p.Description,
		IsPublic:     p.IsPublic,
		WorkspaceID:  p.WorkspaceID,
		Columns:      make([]Column, 0, len(boardColumns)),
		PausedTasks:  nonNil(byStatus[StatusPaused]),
		PlannedTasks: nonNil(byStatus[StatusBacklog]),
	}
	for _, c := range boardColumns {
		board.Columns = append(board.Columns, Column{ID: c.status, Name: c.name, Tasks: nonNil(byStatus[c.status])})
	}
	return board
}

func nonNil(tasks []*TaskWithAssignee) []*TaskWithAssignee {
	if tasks == nil {
		return []*TaskWithAssignee{}
	}
	return tasks
}
