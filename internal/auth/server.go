package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type Server struct {
	authEnv  *config.AuthEnv
	demoEnv  *config.DemoEnv
	users    user.Repository
	sessions *SessionManager
	bus      *eventbus.Bus
	hook     SignInHook
}

func NewServer(authEnv *config.AuthEnv, demoEnv *config.DemoEnv, users user.Repository, sessions *SessionManager, bus *eventbus.Bus, hook SignInHook) *Server {
	return &Server{
		authEnv:  authEnv,
		demoEnv:  demoEnv,
		users:    users,
		sessions: sessions,
		bus:      bus,
		hook:     hook,
	}
}

type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResult is returned by sign-up and sign-in together with the token.
type SessionResult struct {
	Token string `json:"token"`
	Identity
}

// PublicConfig is what the client may read before signing in.
type PublicConfig struct {
	DemoMode            bool `json:"demoMode"`
	RegistrationEnabled bool `json:"registrationEnabled"`
}

func (s *Server) PublicConfig() PublicConfig {
	return PublicConfig{
		DemoMode:            s.demoEnv.DemoMode,
		RegistrationEnabled: !s.authEnv.DisableRegistration,
	}
}

func (s *Server) SignUp(ctx context.Context, in SignUpInput) (*SessionResult, error) {
	if s.authEnv.DisableRegistration {
		return nil, cerr.NewError(cerr.PermissionDenied, "Registration is disabled", nil)
	}
	email, err := user.NormalizeEmail(in.Email)
	if err != nil {
		return nil, cerr.NewInvalidArgument("email", "Invalid email address")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, cerr.NewInvalidArgument("name", "Name is required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, cerr.NewInvalidArgument("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", err)
	}

	now := time.Now()
	u := &user.User{
		ID:        ulid.Make().String(),
		Name:      name,
		Email:     email,
		IsDemo:    s.demoEnv.DemoMode,
		CreatedAt: now,
		UpdatedAt: now,
	}
	account := &user.Account{
		ID:         ulid.Make().String(),
		UserID:     u.ID,
		ProviderID: user.ProviderCredential,
		Password:   hash,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.users.Create(ctx, u, account); err != nil {
		if cerr.IsCode(err, cerr.AlreadyExists) {
			return nil, cerr.NewError(cerr.AlreadyExists, "User already exists", err)
		}
		return nil, err
	}

	token, session, err := s.sessions.Issue(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	s.bus.PublishLogged(ctx, eventbus.UserSignedUp, eventbus.UserSignedUpPayload{UserID: u.ID, Email: u.Email})
	slog.InfoContext(ctx, "user signed up", "user_id", u.ID)
	return &SessionResult{Token: token, Identity: Identity{User: u, Session: session}}, nil
}

func (s *Server) SignIn(ctx context.Context, in SignInInput) (*SessionResult, error) {
	invalid := cerr.NewError(cerr.Unauthenticated, "Invalid email or password", nil)
	email, err := user.NormalizeEmail(in.Email)
	if err != nil {
		return nil, invalid
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, invalid
		}
		return nil, err
	}
	account, err := s.users.GetCredentialAccount(ctx, u.ID)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, invalid
		}
		return nil, err
	}
	ok, err := VerifyPassword(account.Password, in.Password)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", err)
	}
	if !ok {
		return nil, invalid
	}

	token, session, err := s.sessions.Issue(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if s.hook != nil {
		s.hook.OnAuthenticated(ctx, u)
	}
	return &SessionResult{Token: token, Identity: Identity{User: u, Session: session}}, nil
}

func (s *Server) SignOut(ctx context.Context) error {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return nil
	}
	return s.sessions.Revoke(ctx, id.Session.ID)
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword verifies the current password in whichever format is stored
// and replaces it with a primary-format hash.
func (s *Server) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if in.CurrentPassword == "" {
		return cerr.NewInvalidArgument("currentPassword", "Current password is required")
	}
	if len(in.NewPassword) < MinPasswordLength {
		return cerr.NewInvalidArgument("newPassword", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	account, err := s.users.GetCredentialAccount(ctx, userID)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return cerr.NewError(cerr.InvalidArgument, "No password account found", err)
		}
		return err
	}
	ok, err := VerifyPassword(account.Password, in.CurrentPassword)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", err)
	}
	if !ok {
		return cerr.NewInvalidArgument("currentPassword", "Current password is incorrect")
	}
	hash, err := HashPassword(in.NewPassword)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	slog.InfoContext(ctx, "password changed", "user_id", userID, "legacy_hash", !IsPrimaryHash(account.Password))
	return nil
}
