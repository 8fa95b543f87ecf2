package user

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserts the user and its credential account together.
	Create(ctx context.Context, u *User, a *Account) error
	Get(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	GetCredentialAccount(ctx context.Context, userID string) (*Account, error)
	UpdatePassword(ctx context.Context, userID, hash string) error
	ListDemoCreatedBefore(ctx context.Context, before time.Time) ([]*User, error)
}
