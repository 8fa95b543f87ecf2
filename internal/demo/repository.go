package demo

import "context"

type Repository interface {
	// PurgeUser deletes the user, the workspaces they own and every row that
	// references them.
	PurgeUser(ctx context.Context, userID string) error
}
