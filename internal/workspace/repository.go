package workspace

import "context"

type Repository interface {
	Create(ctx context.Context, w *Workspace) error
	Get(ctx context.Context, id string) (*Workspace, error)
	// ListForUser returns workspaces the user owns or is an active member of.
	ListForUser(ctx context.Context, userID string) ([]*Workspace, error)
	Update(ctx context.Context, w *Workspace) error
	// Delete removes the workspace with its memberships and projects.
	Delete(ctx context.Context, id string) error
}

// MemberChecker fails unless userID owns the workspace or is an active member.
type MemberChecker interface {
	RequireMember(ctx context.Context, workspaceID, userID string) error
}
