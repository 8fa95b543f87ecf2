package workspace

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/pkg/cerr"
)

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/workspace", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws, err := s.List(ctx, auth.UserID(ctx))
	cerr.Respond(ctx, ws, err)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in Input
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	ws, err := s.Create(ctx, auth.UserID(ctx), in)
	cerr.RespondCreated(ctx, ws, err)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws, err := s.Get(ctx, chi.URLParam(r, "id"))
	cerr.Respond(ctx, ws, err)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in Input
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	ws, err := s.Update(ctx, auth.UserID(ctx), chi.URLParam(r, "id"), in)
	cerr.Respond(ctx, ws, err)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws, err := s.Delete(ctx, auth.UserID(ctx), chi.URLParam(r, "id"))
	cerr.Respond(ctx, ws, err)
}
