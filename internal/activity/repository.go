package activity

import "context"

type Repository interface {
	Create(ctx context.Context, a *Activity) error
	// ListByTask returns entries newest first.
	ListByTask(ctx context.Context, taskID string) ([]*Entry, error)
}
