package pushsubscription

import "context"

type Repository interface {
	// Upsert stores s, replacing the keys and owner of an existing row with the same endpoint.
	Upsert(ctx context.Context, s *Subscription) error
	ListByUser(ctx context.Context, userID string) ([]*Subscription, error)
	Delete(ctx context.Context, id string) error
	DeleteByEndpoint(ctx context.Context, userID, endpoint string) error
}
