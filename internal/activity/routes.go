package activity

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/pkg/cerr"
)

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/activity", func(r chi.Router) {
		r.Post("/comment", s.handleComment)
		r.Get("/{taskId}", s.handleList)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := chi.URLParam(r, "taskId")
	if err := s.access.AuthorizeTask(ctx, taskID); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	entries, err := s.List(ctx, taskID)
	cerr.Respond(ctx, entries, err)
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in CommentInput
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if in.TaskID != "" {
		if err := s.access.AuthorizeTask(ctx, in.TaskID); err != nil {
			cerr.SetJSONError(ctx, err)
			return
		}
	}
	a, err := s.Comment(ctx, auth.UserID(ctx), in)
	cerr.RespondCreated(ctx, a, err)
}
