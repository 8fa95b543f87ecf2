package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/pkg/cerr"
)

// RegisterRoutes mounts the public /api/auth endpoints.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/sign-up", s.handleSignUp)
		r.Post("/sign-in", s.handleSignIn)
		r.Post("/sign-out", s.handleSignOut)
		r.Get("/session", s.handleSession)
	})
	r.Get("/config", s.handleConfig)
}

// RegisterUserRoutes mounts endpoints that act on the signed-in user.
func (s *Server) RegisterUserRoutes(r chi.Router) {
	r.Put("/user/password", s.handleChangePassword)
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in SignUpInput
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	res, err := s.SignUp(ctx, in)
	if err == nil {
		s.sessions.SetCookie(w, res.Token, res.Session.ExpiresAt)
	}
	cerr.Respond(ctx, res, err)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in SignInInput
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	res, err := s.SignIn(ctx, in)
	if err == nil {
		s.sessions.SetCookie(w, res.Token, res.Session.ExpiresAt)
	}
	cerr.Respond(ctx, res, err)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := s.SignOut(ctx)
	s.sessions.ClearCookie(w)
	cerr.Respond(ctx, map[string]bool{"success": err == nil}, err)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := IdentityFromContext(ctx)
	if !ok {
		cerr.SetJSONResponse(ctx, map[string]any{"user": nil, "session": nil})
		return
	}
	cerr.SetJSONResponse(ctx, id)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), s.PublicConfig())
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := RequireUserID(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	var in ChangePasswordInput
	if err := cerr.DecodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	err = s.ChangePassword(ctx, userID, in)
	cerr.Respond(ctx, map[string]bool{"success": true}, err)
}
