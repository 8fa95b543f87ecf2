package label

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/workspace"
	"github.com/kazz187/taskboard/pkg/cerr"
)

const defaultColor = "#6b7280"

type TaskAuthorizer interface {
	AuthorizeTask(ctx context.Context, taskID string) error
}

type Server struct {
	repo    Repository
	tasks   TaskAuthorizer
	members workspace.MemberChecker
}

func NewServer(repo Repository, tasks TaskAuthorizer, members workspace.MemberChecker) *Server {
	return &Server{repo: repo, tasks: tasks, members: members}
}

// authorize checks the caller against whatever the label hangs off: the task
// when set, the workspace otherwise.
func (s *Server) authorize(ctx context.Context, taskID, workspaceID string) error {
	if taskID != "" {
		return s.tasks.AuthorizeTask(ctx, taskID)
	}
	if workspaceID != "" {
		return s.members.RequireMember(ctx, workspaceID, auth.UserID(ctx))
	}
	return nil
}

func (s *Server) authorizeLabel(ctx context.Context, id string) error {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.authorize(ctx, l.TaskID, l.WorkspaceID)
}

type CreateInput struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	TaskID      string `json:"taskId"`
	WorkspaceID string `json:"workspaceId"`
}

func (s *Server) Create(ctx context.Context, in CreateInput) (*Label, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, cerr.NewInvalidArgument("name", "Name is required")
	}
	if in.TaskID == "" && in.WorkspaceID == "" {
		return nil, cerr.NewInvalidArgument("taskId", "taskId or workspaceId is required")
	}
	color := in.Color
	if color == "" {
		color = defaultColor
	}
	l := &Label{
		ID:          ulid.Make().String(),
		Name:        name,
		Color:       color,
		TaskID:      in.TaskID,
		WorkspaceID: in.WorkspaceID,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Server) ListByTask(ctx context.Context, taskID string) ([]*Label, error) {
	return nonNil(s.repo.ListByTask(ctx, taskID))
}

func (s *Server) ListByWorkspace(ctx context.Context, workspaceID string) ([]*Label, error) {
	return nonNil(s.repo.ListByWorkspace(ctx, workspaceID))
}

func nonNil(labels []*Label, err error) ([]*Label, error) {
	if err != nil {
		return nil, err
	}
	if labels == nil {
		labels = []*Label{}
	}
	return labels, nil
}

type UpdateInput struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (s *Server) Update(ctx context.Context, id string, in UpdateInput) (*Label, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, cerr.NewInvalidArgument("name", "Name is required")
		}
		l.Name = name
	}
	if in.Color != nil && *in.Color != "" {
		l.Color = *in.Color
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Server) Delete(ctx context.Context, id string) (*Label, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return l, nil
}
