package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/pkg/cerr"
)

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/notification", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Delete("/", s.handleClear)
		r.Patch("/read-all", s.handleMarkAllRead)
		r.Patch("/{id}/read", s.handleMarkRead)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ns, err := s.List(ctx, auth.UserID(ctx))
	cerr.Respond(ctx, ns, err)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n, err := s.MarkRead(ctx, auth.UserID(ctx), chi.URLParam(r, "id"))
	cerr.Respond(ctx, n, err)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	count, err := s.MarkAllRead(ctx, auth.UserID(ctx))
	cerr.Respond(ctx, map[string]int64{"updated": count}, err)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	count, err := s.Clear(ctx, auth.UserID(ctx))
	cerr.Respond(ctx, map[string]int64{"deleted": count}, err)
}
