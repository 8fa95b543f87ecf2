package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/clog"
)

// SignInHook runs for every request that carries a valid session and on sign-in.
type SignInHook interface {
	OnAuthenticated(ctx context.Context, u *user.User)
}

type Middleware struct {
	sessions *SessionManager
	users    user.Repository
	hook     SignInHook
}

func NewMiddleware(sessions *SessionManager, users user.Repository, hook SignInHook) *Middleware {
	return &Middleware{sessions: sessions, users: users, hook: hook}
}

// Authenticate attaches the caller's identity when the request carries a valid
// session. Requests without one pass through unauthenticated.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.sessions.TokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		s, err := m.sessions.Resolve(ctx, token)
		if err != nil {
			slog.DebugContext(ctx, "ignoring session token", clog.ErrorAttributeKey, err)
			next.ServeHTTP(w, r)
			return
		}
		u, err := m.users.Get(ctx, s.UserID)
		if err != nil {
			slog.WarnContext(ctx, "session user lookup failed", "session_id", s.ID, clog.ErrorAttributeKey, err)
			next.ServeHTTP(w, r)
			return
		}
		clog.AddAttribute(ctx, "user_id", u.ID)
		if m.hook != nil {
			m.hook.OnAuthenticated(ctx, u)
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(ctx, &Identity{User: u, Session: s})))
	})
}

// RequireAuth rejects requests without an identity. It must run after
// Authenticate and the cerr response middleware.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			cerr.SetNewJSONError(r.Context(), cerr.Unauthenticated, "unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
