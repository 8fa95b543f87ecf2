package project

import "context"

type Repository interface {
	Create(ctx context.Context, p *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*Project, error)
	Update(ctx context.Context, p *Project) error
	// Delete removes the project together with its tasks and their activities and labels.
	Delete(ctx context.Context, id string) error
}
