package label

import "context"

type Repository interface {
	Create(ctx context.Context, l *Label) error
	Get(ctx context.Context, id string) (*Label, error)
	ListByTask(ctx context.Context, taskID string) ([]*Label, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*Label, error)
	Update(ctx context.Context, l *Label) error
	Delete(ctx context.Context, id string) error
}
