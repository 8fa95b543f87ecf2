package label

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/pkg/cerr"
)

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/label", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/task/{taskId}", s.handleListByTask)
		r.Get("/workspace/{workspaceId}", s.handleListByWorkspace)
		r.Put("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in CreateInput
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.authorize(ctx, in.TaskID, in.WorkspaceID); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	l, err := s.Create(ctx, in)
	cerr.RespondCreated(ctx, l, err)
}

func (s *Server) handleListByTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := chi.URLParam(r, "taskId")
	if err := s.authorize(ctx, taskID, ""); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	labels, err := s.ListByTask(ctx, taskID)
	cerr.Respond(ctx, labels, err)
}

func (s *Server) handleListByWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workspaceID := chi.URLParam(r, "workspaceId")
	if err := s.authorize(ctx, "", workspaceID); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	labels, err := s.ListByWorkspace(ctx, workspaceID)
	cerr.Respond(ctx, labels, err)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := s.authorizeLabel(ctx, id); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	var in UpdateInput
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	l, err := s.Update(ctx, id, in)
	cerr.Respond(ctx, l, err)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := s.authorizeLabel(ctx, id); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	l, err := s.Delete(ctx, id)
	cerr.Respond(ctx, l, err)
}
