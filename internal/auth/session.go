package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/pkg/cerr"
)

const tokenIssuer = "taskboard"

// SessionManager issues signed session tokens that reference a server-side
// session row, so revoking the row invalidates the token.
type SessionManager struct {
	env  *config.AuthEnv
	repo SessionRepository
	now  func() time.Time
}

func NewSessionManager(env *config.AuthEnv, repo SessionRepository) *SessionManager {
	return &SessionManager{env: env, repo: repo, now: time.Now}
}

func (m *SessionManager) Issue(ctx context.Context, userID string) (string, *Session, error) {
	now := m.now()
	s := &Session{
		ID:        ulid.Make().String(),
		UserID:    userID,
		ExpiresAt: now.Add(m.env.SessionTTL),
		CreatedAt: now,
	}
	if err := m.repo.Create(ctx, s); err != nil {
		return "", nil, err
	}
	claims := jwt.RegisteredClaims{
		ID:        s.ID,
		Subject:   userID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.env.SessionSecret))
	if err != nil {
		return "", nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to sign session token: %w", err))
	}
	return token, s, nil
}

func (m *SessionManager) Resolve(ctx context.Context, token string) (*Session, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(m.env.SessionSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, cerr.NewError(cerr.Unauthenticated, "invalid session", err)
	}
	s, err := m.repo.Get(ctx, claims.ID)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, cerr.NewError(cerr.Unauthenticated, "session revoked", err)
		}
		return nil, err
	}
	if s.UserID != claims.Subject || s.Expired(m.now()) {
		return nil, cerr.NewError(cerr.Unauthenticated, "session expired", nil)
	}
	return s, nil
}

func (m *SessionManager) Revoke(ctx context.Context, sessionID string) error {
	return m.repo.Delete(ctx, sessionID)
}

// TokenFromRequest reads the session cookie, falling back to a bearer token.
func (m *SessionManager) TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(m.env.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func (m *SessionManager) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.env.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.env.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.env.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.env.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
