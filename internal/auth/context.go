package auth

import (
	"context"

	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type Identity struct {
	User    *user.User `json:"user"`
	Session *Session   `json:"session"`
}

type identityKey struct{}

func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}

// UserID returns the signed-in user's id or "".
func UserID(ctx context.Context) string {
	if id, ok := IdentityFromContext(ctx); ok {
		return id.User.ID
	}
	return ""
}

func RequireUserID(ctx context.Context) (string, error) {
	if id := UserID(ctx); id != "" {
		return id, nil
	}
	return "", cerr.NewError(cerr.Unauthenticated, "unauthorized", nil)
}
