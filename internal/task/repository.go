package task

import (
	"context"
)

type Repository interface {
	// Create assigns t.Number as the project's current maximum plus one and inserts t.
	Create(ctx context.Context, t *Task) error
	// CreateBatch numbers and inserts every task in one transaction. Either all
	// rows are written or none are.
	CreateBatch(ctx context.Context, projectID string, tasks []*Task) error
	Get(ctx context.Context, id string) (*TaskWithAssignee, error)
	// ListByProject returns the project's tasks ordered by position, then insertion order.
	ListByProject(ctx context.Context, projectID string) ([]*TaskWithAssignee, error)
	MaxNumber(ctx context.Context, projectID string) (int, error)
	MaxPosition(ctx context.Context, projectID string, status Status) (float64, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
}
