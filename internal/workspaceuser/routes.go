package workspaceuser

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/pkg/cerr"
)

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/workspace-user", func(r chi.Router) {
		r.Post("/root", s.handleCreateRoot)
		r.Get("/user/{id}", s.handleGet)
		r.Get("/{workspaceId}", s.handleList)
		r.Get("/{workspaceId}/active", s.handleListActive)
		r.Post("/{workspaceId}/invite", s.handleInvite)
		r.Delete("/{workspaceId}/invite/{userId}", s.handleDeleteInvite)
		r.Delete("/{workspaceId}", s.handleDelete)
		r.Put("/{workspaceId}/password", s.handleResetPassword)
		r.Put("/{userId}", s.handleUpdateStatus)
	})
}

func (s *Server) handleCreateRoot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in struct {
		WorkspaceID string `json:"workspaceId"`
		UserID      string `json:"userId"`
	}
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	callerID := auth.UserID(ctx)
	if in.UserID != "" && in.UserID != callerID {
		cerr.SetNewJSONError(ctx, cerr.PermissionDenied, "Only the workspace owner can hold the root membership", nil)
		return
	}
	wu, err := s.CreateRoot(ctx, in.WorkspaceID, callerID)
	cerr.RespondCreated(ctx, wu, err)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wu, err := s.Get(ctx, chi.URLParam(r, "id"))
	if err == nil {
		err = s.RequireMember(ctx, wu.WorkspaceID, auth.UserID(ctx))
	}
	cerr.Respond(ctx, wu, err)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workspaceID := chi.URLParam(r, "workspaceId")
	if err := s.RequireMember(ctx, workspaceID, auth.UserID(ctx)); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	members, err := s.List(ctx, workspaceID)
	cerr.Respond(ctx, members, err)
}

func (s *Server) handleListActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workspaceID := chi.URLParam(r, "workspaceId")
	if err := s.RequireMember(ctx, workspaceID, auth.UserID(ctx)); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	members, err := s.ListActive(ctx, workspaceID)
	cerr.Respond(ctx, members, err)
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in struct {
		Email string `json:"email"`
	}
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	wu, err := s.Invite(ctx, auth.UserID(ctx), chi.URLParam(r, "workspaceId"), in.Email)
	cerr.RespondCreated(ctx, wu, err)
}

func (s *Server) handleDeleteInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wu, err := s.Delete(ctx, auth.UserID(ctx), chi.URLParam(r, "workspaceId"), chi.URLParam(r, "userId"))
	cerr.Respond(ctx, wu, err)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target := r.URL.Query().Get("userId")
	if target == "" {
		cerr.SetJSONError(ctx, cerr.NewInvalidArgument("userId", "userId is required"))
		return
	}
	wu, err := s.Delete(ctx, auth.UserID(ctx), chi.URLParam(r, "workspaceId"), target)
	cerr.Respond(ctx, wu, err)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in struct {
		Status string `json:"status"`
	}
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	userID := chi.URLParam(r, "userId")
	if userID != auth.UserID(ctx) {
		cerr.SetNewJSONError(ctx, cerr.PermissionDenied, "You can only update your own memberships", nil)
		return
	}
	updated, err := s.UpdateStatus(ctx, userID, in.Status)
	cerr.Respond(ctx, updated, err)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in ResetPasswordInput
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	err := s.ResetMemberPassword(ctx, auth.UserID(ctx), chi.URLParam(r, "workspaceId"), in)
	cerr.Respond(ctx, map[string]bool{"success": true}, err)
}
