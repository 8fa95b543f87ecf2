package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type Server struct {
	repo Repository
	bus  *eventbus.Bus
}

func NewServer(repo Repository, bus *eventbus.Bus) *Server {
	return &Server{repo: repo, bus: bus}
}

type Input struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Create stores the workspace and publishes workspace.created, whose
// subscriber gives the owner a root membership.
func (s *Server) Create(ctx context.Context, ownerID string, in Input) (*Workspace, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, cerr.NewInvalidArgument("name", "Name is required")
	}
	now := time.Now()
	w := &Workspace{
		ID:        ulid.Make().String(),
		Name:      strings.TrimSpace(*in.Name),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Description != nil {
		w.Description = *in.Description
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	s.bus.PublishLogged(ctx, eventbus.WorkspaceCreated, eventbus.WorkspaceCreatedPayload{WorkspaceID: w.ID, OwnerID: ownerID})
	slog.InfoContext(ctx, "workspace created", "workspace_id", w.ID)
	return w, nil
}

func (s *Server) List(ctx context.Context, userID string) ([]*Workspace, error) {
	ws, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		ws = []*Workspace{}
	}
	return ws, nil
}

func (s *Server) Get(ctx context.Context, id string) (*Workspace, error) {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, cerr.NewError(cerr.NotFound, "Workspace not found", err)
		}
		return nil, err
	}
	return w, nil
}

func (s *Server) owned(ctx context.Context, requesterID, id, action string) (*Workspace, error) {
	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.OwnerID != requesterID {
		return nil, cerr.NewError(cerr.PermissionDenied, fmt.Sprintf("Only the workspace owner can %s the workspace", action), nil)
	}
	return w, nil
}

func (s *Server) Update(ctx context.Context, requesterID, id string, in Input) (*Workspace, error) {
	w, err := s.owned(ctx, requesterID, id, "update")
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, cerr.NewInvalidArgument("name", "Name is required")
		}
		w.Name = name
	}
	if in.Description != nil {
		w.Description = *in.Description
	}
	w.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Server) Delete(ctx context.Context, requesterID, id string) (*Workspace, error) {
	w, err := s.owned(ctx, requesterID, id, "delete")
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "workspace deleted", "workspace_id", id)
	return w, nil
}
