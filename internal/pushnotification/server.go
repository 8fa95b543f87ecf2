package pushnotification

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/pushsubscription"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type Server struct {
	vapidEnv *config.VAPIDEnv
	repo     pushsubscription.Repository
}

func NewServer(vapidEnv *config.VAPIDEnv, repo pushsubscription.Repository) *Server {
	return &Server{
		vapidEnv: vapidEnv,
		repo:     repo,
	}
}

func (s *Server) VapidPublicKey(_ context.Context) (string, error) {
	if s.vapidEnv.VAPIDPublicKey == "" {
		return "", cerr.NewError(cerr.FailedPrecondition, "VAPID keys not configured", nil)
	}
	return s.vapidEnv.VAPIDPublicKey, nil
}

type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// SubscriptionInput matches the browser's PushSubscription.toJSON() shape.
type SubscriptionInput struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}

// Register stores the subscription for userID. Registering a known endpoint
// again replaces its keys and owner.
func (s *Server) Register(ctx context.Context, userID string, in SubscriptionInput) (*pushsubscription.Subscription, error) {
	if in.Endpoint == "" {
		return nil, cerr.NewInvalidArgument("endpoint", "endpoint is required")
	}
	if in.Keys.P256dh == "" {
		return nil, cerr.NewInvalidArgument("keys.p256dh", "p256dh key is required")
	}
	if in.Keys.Auth == "" {
		return nil, cerr.NewInvalidArgument("keys.auth", "auth key is required")
	}
	sub := &pushsubscription.Subscription{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Endpoint:  in.Endpoint,
		P256dhKey: in.Keys.P256dh,
		AuthKey:   in.Keys.Auth,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Server) Unregister(ctx context.Context, userID, endpoint string) error {
	if endpoint == "" {
		return cerr.NewInvalidArgument("endpoint", "endpoint is required")
	}
	return s.repo.DeleteByEndpoint(ctx, userID, endpoint)
}
