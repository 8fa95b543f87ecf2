package task

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/pkg/cerr"
)

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/task", func(r chi.Router) {
		r.Get("/tasks/{projectId}", s.handleBoard)
		r.Post("/import/{projectId}", s.handleImport)
		r.Get("/export/{projectId}", s.handleExport)
		r.Put("/status/{id}", s.handleMove)
		r.Post("/{projectId}", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})
}

// RegisterPublicRoutes mounts the endpoints served without a session.
func (s *Server) RegisterPublicRoutes(r chi.Router) {
	r.Get("/public-project/{id}", s.handlePublicBoard)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := chi.URLParam(r, "projectId")
	if err := s.AuthorizeProject(ctx, projectID); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	board, err := s.Board(ctx, projectID)
	cerr.Respond(ctx, board, err)
}

func (s *Server) handlePublicBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	board, err := s.PublicBoard(ctx, chi.URLParam(r, "id"))
	cerr.Respond(ctx, board, err)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := chi.URLParam(r, "projectId")
	if err := s.AuthorizeProject(ctx, projectID); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	var in CreateInput
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.Create(ctx, projectID, in)
	cerr.RespondCreated(ctx, t, err)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := chi.URLParam(r, "projectId")
	if err := s.AuthorizeProject(ctx, projectID); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	var in struct {
		Tasks []CreateInput `json:"tasks"`
	}
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	res, err := s.Import(ctx, projectID, in.Tasks)
	cerr.Respond(ctx, res, err)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := chi.URLParam(r, "projectId")
	if err := s.AuthorizeProject(ctx, projectID); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	res, err := s.Export(ctx, projectID)
	cerr.Respond(ctx, res, err)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := s.AuthorizeTask(ctx, id); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.Get(ctx, id)
	cerr.Respond(ctx, t, err)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := s.AuthorizeTask(ctx, id); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	var in UpdateInput
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.Update(ctx, id, in)
	cerr.Respond(ctx, t, err)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := s.AuthorizeTask(ctx, id); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	var in MoveInput
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.Move(ctx, id, in)
	cerr.Respond(ctx, t, err)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := s.AuthorizeTask(ctx, id); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.Delete(ctx, id)
	cerr.Respond(ctx, t, err)
}
