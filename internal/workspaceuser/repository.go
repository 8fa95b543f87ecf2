package workspaceuser

import "context"

type Repository interface {
	Create(ctx context.Context, wu *WorkspaceUser) error
	Get(ctx context.Context, id string) (*WorkspaceUser, error)
	// FindForUser matches a membership of the workspace by user id or by email.
	FindForUser(ctx context.Context, workspaceID, userID, email string) (*WorkspaceUser, error)
	List(ctx context.Context, workspaceID string) ([]*Member, error)
	ListActive(ctx context.Context, workspaceID string) ([]*Member, error)
	// Delete removes the membership identified by user id or email.
	Delete(ctx context.Context, workspaceID, userIDOrEmail string) (*WorkspaceUser, error)
	UpdateStatusByUser(ctx context.Context, userID string, status Status) ([]*WorkspaceUser, error)
	// ActivatePending links every pending membership for userID or email to
	// userID and marks it active. It returns the rows it changed.
	ActivatePending(ctx context.Context, userID, email string) ([]*WorkspaceUser, error)
}
