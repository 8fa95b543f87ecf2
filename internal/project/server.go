package project

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/workspace"
	"github.com/kazz187/taskboard/pkg/cerr"
)

const defaultIcon = "Layout"

type Server struct {
	repo       Repository
	workspaces workspace.Repository
	members    workspace.MemberChecker
}

func NewServer(repo Repository, workspaces workspace.Repository, members workspace.MemberChecker) *Server {
	return &Server{repo: repo, workspaces: workspaces, members: members}
}

// AuthorizeWorkspace checks that the caller belongs to the workspace.
func (s *Server) AuthorizeWorkspace(ctx context.Context, workspaceID string) error {
	return s.members.RequireMember(ctx, workspaceID, auth.UserID(ctx))
}

// AuthorizeProject checks that the caller belongs to the project's workspace.
func (s *Server) AuthorizeProject(ctx context.Context, projectID string) error {
	p, err := s.Get(ctx, projectID)
	if err != nil {
		return err
	}
	return s.AuthorizeWorkspace(ctx, p.WorkspaceID)
}

// Slugify lower-cases name and joins its letter and digit runs with dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

type CreateInput struct {
	WorkspaceID string `json:"workspaceId"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
}

func (s *Server) Create(ctx context.Context, in CreateInput) (*Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, cerr.NewInvalidArgument("name", "Name is required")
	}
	if in.WorkspaceID == "" {
		return nil, cerr.NewInvalidArgument("workspaceId", "workspaceId is required")
	}
	if _, err := s.workspaces.Get(ctx, in.WorkspaceID); err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, cerr.NewError(cerr.NotFound, "Workspace not found", err)
		}
		return nil, err
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	icon := in.Icon
	if icon == "" {
		icon = defaultIcon
	}
	now := time.Now()
	p := &Project{
		ID:          ulid.Make().String(),
		WorkspaceID: in.WorkspaceID,
		Name:        name,
		Slug:        slug,
		Icon:        icon,
		Description: in.Description,
		IsPublic:    in.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "project created", "project_id", p.ID, "workspace_id", p.WorkspaceID)
	return p, nil
}

func (s *Server) Get(ctx context.Context, id string) (*Project, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, cerr.NewError(cerr.NotFound, "Project not found", err)
		}
		return nil, err
	}
	return p, nil
}

func (s *Server) List(ctx context.Context, workspaceID string) ([]*Project, error) {
	if workspaceID == "" {
		return nil, cerr.NewInvalidArgument("workspaceId", "workspaceId is required")
	}
	projects, err := s.repo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []*Project{}
	}
	return projects, nil
}

type UpdateInput struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Icon        *string `json:"icon"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"isPublic"`
}

func (s *Server) Update(ctx context.Context, id string, in UpdateInput) (*Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, cerr.NewInvalidArgument("name", "Name is required")
		}
		p.Name = name
	}
	if in.Slug != nil {
		if slug := Slugify(*in.Slug); slug != "" {
			p.Slug = slug
		}
	}
	if in.Icon != nil {
		p.Icon = *in.Icon
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.IsPublic != nil {
		p.IsPublic = *in.IsPublic
	}
	p.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the project and its tasks in one transaction.
func (s *Server) Delete(ctx context.Context, id string) (*Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "project deleted", "project_id", id)
	return p, nil
}
