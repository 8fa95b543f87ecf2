package project

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/pkg/cerr"
)

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/project", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workspaceID := r.URL.Query().Get("workspaceId")
	if workspaceID != "" {
		if err := s.AuthorizeWorkspace(ctx, workspaceID); err != nil {
			cerr.SetJSONError(ctx, err)
			return
		}
	}
	projects, err := s.List(ctx, workspaceID)
	cerr.Respond(ctx, projects, err)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in CreateInput
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if in.WorkspaceID != "" {
		if err := s.AuthorizeWorkspace(ctx, in.WorkspaceID); err != nil {
			cerr.SetJSONError(ctx, err)
			return
		}
	}
	p, err := s.Create(ctx, in)
	cerr.RespondCreated(ctx, p, err)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := s.AuthorizeProject(ctx, id); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	p, err := s.Get(ctx, id)
	cerr.Respond(ctx, p, err)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := s.AuthorizeProject(ctx, id); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	var in UpdateInput
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	p, err := s.Update(ctx, id, in)
	cerr.Respond(ctx, p, err)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := s.AuthorizeProject(ctx, id); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	p, err := s.Delete(ctx, id)
	cerr.Respond(ctx, p, err)
}
