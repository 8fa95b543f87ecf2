package workspaceuser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/internal/workspace"
	"github.com/kazz187/taskboard/pkg/cerr"
)

const msgAlreadyInvited = "User is already invited to this workspace"

type Server struct {
	repo       Repository
	workspaces workspace.Repository
	users      user.Repository
	activator  *Activator
}

func NewServer(repo Repository, workspaces workspace.Repository, users user.Repository, activator *Activator) *Server {
	return &Server{
		repo:       repo,
		workspaces: workspaces,
		users:      users,
		activator:  activator,
	}
}

func (s *Server) getWorkspace(ctx context.Context, id string) (*workspace.Workspace, error) {
	w, err := s.workspaces.Get(ctx, id)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, cerr.NewError(cerr.NotFound, "Workspace not found", err)
		}
		return nil, err
	}
	return w, nil
}

// requireMember allows the owner and active members.
func (s *Server) requireMember(ctx context.Context, w *workspace.Workspace, userID string) error {
	if w.OwnerID == userID {
		return nil
	}
	wu, err := s.repo.FindForUser(ctx, w.ID, userID, "")
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return cerr.NewError(cerr.PermissionDenied, "You are not a member of this workspace", nil)
		}
		return err
	}
	if wu.Status != StatusActive {
		return cerr.NewError(cerr.PermissionDenied, "You are not a member of this workspace", nil)
	}
	return nil
}

// Invite records a pending membership keyed by email. The user id is filled in
// now when the address already belongs to a user, or later by activation.
func (s *Server) Invite(ctx context.Context, requesterID, workspaceID, rawEmail string) (*WorkspaceUser, error) {
	w, err := s.getWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, w, requesterID); err != nil {
		return nil, err
	}
	email, err := user.NormalizeEmail(rawEmail)
	if err != nil {
		return nil, cerr.NewInvalidArgument("email", "Invalid email address")
	}

	var userID string
	u, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		userID = u.ID
	case cerr.IsCode(err, cerr.NotFound):
	default:
		return nil, err
	}

	_, err = s.repo.FindForUser(ctx, workspaceID, userID, email)
	if err == nil {
		return nil, cerr.NewError(cerr.InvalidArgument, msgAlreadyInvited, nil)
	}
	if !cerr.IsCode(err, cerr.NotFound) {
		return nil, err
	}

	now := time.Now()
	wu := &WorkspaceUser{
		ID:          ulid.Make().String(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		UserEmail:   email,
		Role:        RoleMember,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, wu); err != nil {
		if cerr.IsCode(err, cerr.AlreadyExists) {
			return nil, cerr.NewError(cerr.InvalidArgument, msgAlreadyInvited, err)
		}
		return nil, err
	}
	slog.InfoContext(ctx, "invited workspace user", "workspace_id", workspaceID, "workspace_user_id", wu.ID, "linked", userID != "")
	return wu, nil
}

// CreateRoot makes the workspace owner an active owner member. An existing
// membership is returned unchanged.
func (s *Server) CreateRoot(ctx context.Context, workspaceID, userID string) (*WorkspaceUser, error) {
	if workspaceID == "" || userID == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "workspaceId and userId are required", nil)
	}
	w, err := s.getWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if w.OwnerID != userID {
		return nil, cerr.NewError(cerr.PermissionDenied, "Only the workspace owner can hold the root membership", nil)
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.FindForUser(ctx, workspaceID, u.ID, u.Email)
	if err == nil {
		return existing, nil
	}
	if !cerr.IsCode(err, cerr.NotFound) {
		return nil, err
	}

	now := time.Now()
	wu := &WorkspaceUser{
		ID:          ulid.Make().String(),
		WorkspaceID: workspaceID,
		UserID:      u.ID,
		UserEmail:   u.Email,
		Role:        RoleOwner,
		Status:      StatusActive,
		JoinedAt:    &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, wu); err != nil {
		if cerr.IsCode(err, cerr.AlreadyExists) {
			return s.repo.FindForUser(ctx, workspaceID, u.ID, u.Email)
		}
		return nil, err
	}
	return wu, nil
}

func (s *Server) List(ctx context.Context, workspaceID string) ([]*Member, error) {
	return s.repo.List(ctx, workspaceID)
}

func (s *Server) ListActive(ctx context.Context, workspaceID string) ([]*Member, error) {
	return s.repo.ListActive(ctx, workspaceID)
}

func (s *Server) Get(ctx context.Context, id string) (*WorkspaceUser, error) {
	return s.repo.Get(ctx, id)
}

// RequireMember fails unless userID owns the workspace or holds an active
// membership in it.
func (s *Server) RequireMember(ctx context.Context, workspaceID, userID string) error {
	w, err := s.getWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	return s.requireMember(ctx, w, userID)
}

// Delete removes a membership addressed by user id or email. Owners may remove
// anyone but themselves; members may remove only their own membership.
func (s *Server) Delete(ctx context.Context, requesterID, workspaceID, userIDOrEmail string) (*WorkspaceUser, error) {
	if userIDOrEmail == "" {
		return nil, cerr.NewInvalidArgument("userId", "userId is required")
	}
	w, err := s.getWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	target, err := s.repo.FindForUser(ctx, workspaceID, userIDOrEmail, userIDOrEmail)
	if err != nil {
		return nil, err
	}
	if target.Role == RoleOwner || (target.UserID != "" && target.UserID == w.OwnerID) {
		return nil, cerr.NewError(cerr.InvalidArgument, "The workspace owner cannot be removed", nil)
	}
	if w.OwnerID != requesterID && target.UserID != requesterID {
		return nil, cerr.NewError(cerr.PermissionDenied, "Only the workspace owner can remove members", nil)
	}
	return s.repo.Delete(ctx, workspaceID, target.UserEmail)
}

// UpdateStatus activates every membership of userID. Memberships never move
// back to pending.
func (s *Server) UpdateStatus(ctx context.Context, userID, status string) ([]*WorkspaceUser, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, cerr.NewInvalidArgument("status", err.Error())
	}
	if st != StatusActive {
		return nil, cerr.NewInvalidArgument("status", "Membership status can only be set to active")
	}
	return s.repo.UpdateStatusByUser(ctx, userID, st)
}

type ResetPasswordInput struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// ResetMemberPassword lets the workspace owner overwrite a member's password.
// The stored hash is read back to confirm the write.
func (s *Server) ResetMemberPassword(ctx context.Context, requesterID, workspaceID string, in ResetPasswordInput) error {
	if in.UserID == "" {
		return cerr.NewInvalidArgument("userId", "userId is required")
	}
	if len(in.Password) < auth.MinPasswordLength {
		return cerr.NewInvalidArgument("password", fmt.Sprintf("Password must be at least %d characters", auth.MinPasswordLength))
	}
	w, err := s.getWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	if w.OwnerID != requesterID {
		return cerr.NewError(cerr.PermissionDenied, "Only the workspace owner can reset member passwords", nil)
	}
	if _, err := s.users.GetCredentialAccount(ctx, in.UserID); err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return cerr.NewError(cerr.NotFound, "User account not found", err)
		}
		return err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", err)
	}
	if err := s.users.UpdatePassword(ctx, in.UserID, hash); err != nil {
		return err
	}
	updated, err := s.users.GetCredentialAccount(ctx, in.UserID)
	if err != nil {
		return cerr.NewError(cerr.Internal, "Failed to update member password", err)
	}
	if updated.Password != hash {
		return cerr.NewError(cerr.Internal, "Failed to verify updated password",
			fmt.Errorf("stored hash for account %s differs from written hash", updated.ID))
	}
	slog.InfoContext(ctx, "member password reset", "workspace_id", workspaceID, "user_id", in.UserID)
	return nil
}
