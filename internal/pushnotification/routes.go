package pushnotification

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/pkg/cerr"
)

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/push", func(r chi.Router) {
		r.Get("/vapid-public-key", s.handleVapidPublicKey)
		r.Post("/subscription", s.handleRegister)
		r.Delete("/subscription", s.handleUnregister)
	})
}

func (s *Server) handleVapidPublicKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, err := s.VapidPublicKey(ctx)
	cerr.Respond(ctx, map[string]string{"publicKey": key}, err)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in SubscriptionInput
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	sub, err := s.Register(ctx, auth.UserID(ctx), in)
	cerr.RespondCreated(ctx, sub, err)
}

func (s *Server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in struct {
		Endpoint string `json:"endpoint"`
	}
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	err := s.Unregister(ctx, auth.UserID(ctx), in.Endpoint)
	cerr.Respond(ctx, map[string]bool{"success": true}, err)
}
