package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/project"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

const (
	contentCreated  = "created the task"
	contentImported = "imported the task"
)

// ProjectAuthorizer checks that the caller may work on a project.
type ProjectAuthorizer interface {
	AuthorizeProject(ctx context.Context, projectID string) error
}

type Server struct {
	repo     Repository
	projects project.Repository
	bus      *eventbus.Bus
	archive  storage.Storage
	access   ProjectAuthorizer
}

// NewServer wires the task service. access guards the HTTP handlers and may
// be nil when the server is only driven from the command line.
func NewServer(repo Repository, projects project.Repository, bus *eventbus.Bus, archive storage.Storage, access ProjectAuthorizer) *Server {
	return &Server{
		repo:     repo,
		projects: projects,
		bus:      bus,
		archive:  archive,
		access:   access,
	}
}

func (s *Server) AuthorizeProject(ctx context.Context, projectID string) error {
	if s.access == nil {
		return nil
	}
	return s.access.AuthorizeProject(ctx, projectID)
}

// AuthorizeTask checks that the caller belongs to the workspace owning the
// task's project.
func (s *Server) AuthorizeTask(ctx context.Context, taskID string) error {
	t, err := s.repo.Get(ctx, taskID)
	if err != nil {
		return err
	}
	return s.AuthorizeProject(ctx, t.ProjectID)
}

func (s *Server) getProject(ctx context.Context, id string) (*project.Project, error) {
	p, err := s.projects.Get(ctx, id)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, cerr.NewError(cerr.NotFound, "Project not found", err)
		}
		return nil, err
	}
	return p, nil
}

type CreateInput struct {
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Status      string     `json:"status" yaml:"status"`
	Priority    string     `json:"priority" yaml:"priority"`
	UserID      string     `json:"userId" yaml:"userId"`
	DueDate     *time.Time `json:"dueDate" yaml:"dueDate"`
}

// toTask validates in. field prefixes the names reported in violations.
func (in CreateInput) toTask(projectID, field string) (*Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, cerr.NewInvalidArgument(field+"title", "Title is required")
	}
	status, err := ParseStatus(in.Status)
	if err != nil {
		return nil, cerr.NewInvalidArgument(field+"status", err.Error())
	}
	priority, err := ParsePriority(in.Priority)
	if err != nil {
		return nil, cerr.NewInvalidArgument(field+"priority", err.Error())
	}
	now := time.Now()
	return &Task{
		ID:          ulid.Make().String(),
		ProjectID:   projectID,
		Title:       title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     in.DueDate,
		UserID:      in.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func createdPayload(ctx context.Context, t *Task, typ, content string) eventbus.TaskCreatedPayload {
	return eventbus.TaskCreatedPayload{
		TaskID:    t.ID,
		ProjectID: t.ProjectID,
		UserID:    t.UserID,
		ActorID:   auth.UserID(ctx),
		Type:      typ,
		Content:   content,
		Title:     t.Title,
	}
}

// Create numbers the task after the project's current highest number and
// announces it with task.created.
func (s *Server) Create(ctx context.Context, projectID string, in CreateInput) (*TaskWithAssignee, error) {
	t, err := in.toTask(projectID, "")
	if err != nil {
		return nil, err
	}
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, cerr.NewError(cerr.Internal, "Failed to create task", err)
	}
	s.bus.PublishLogged(ctx, eventbus.TaskCreated, createdPayload(ctx, t, eventbus.ActivityTypeTask, contentCreated))

	created, err := s.repo.Get(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "task created", "task_id", t.ID, "project_id", projectID, "number", t.Number)
	return created, nil
}

func (s *Server) Board(ctx context.Context, projectID string) (*Board, error) {
	p, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.board(ctx, p)
}

// PublicBoard serves the board of a project flagged public. Private projects
// are reported as missing.
func (s *Server) PublicBoard(ctx context.Context, projectID string) (*Board, error) {
	p, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !p.IsPublic {
		return nil, cerr.NewError(cerr.NotFound, "Project not found", fmt.Errorf("project %s is private", p.ID))
	}
	return s.board(ctx, p)
}

func (s *Server) board(ctx context.Context, p *project.Project) (*Board, error) {
	tasks, err := s.repo.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return BuildBoard(p, tasks), nil
}

func (s *Server) Get(ctx context.Context, id string) (*TaskWithAssignee, error) {
	return s.repo.Get(ctx, id)
}

type UpdateInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	UserID      *string    `json:"userId"`
	DueDate     *time.Time `json:"dueDate"`
	Position    *float64   `json:"position"`
}

func (s *Server) Update(ctx context.Context, id string, in UpdateInput) (*TaskWithAssignee, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t := current.Task
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, cerr.NewInvalidArgument("title", "Title is required")
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		st, err := ParseStatus(*in.Status)
		if err != nil {
			return nil, cerr.NewInvalidArgument("status", err.Error())
		}
		t.Status = st
	}
	if in.Priority != nil {
		p, err := ParsePriority(*in.Priority)
		if err != nil {
			return nil, cerr.NewInvalidArgument("priority", err.Error())
		}
		t.Priority = p
	}
	if in.UserID != nil {
		t.UserID = *in.UserID
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.Position != nil {
		t.Position = *in.Position
	}
	return s.save(ctx, &t)
}

type MoveInput struct {
	Status   string   `json:"status"`
	Position *float64 `json:"position"`
}

// Move changes the task's column. Without a position the task goes to the
// bottom of the target column.
func (s *Server) Move(ctx context.Context, id string, in MoveInput) (*TaskWithAssignee, error) {
	status, err := ParseStatus(in.Status)
	if err != nil {
		return nil, cerr.NewInvalidArgument("status", err.Error())
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t := current.Task
	t.Status = status
	if in.Position != nil {
		t.Position = *in.Position
	} else if current.Status != status {
		maxPos, err := s.repo.MaxPosition(ctx, t.ProjectID, status)
		if err != nil {
			return nil, err
		}
		t.Position = maxPos + 1
	}
	return s.save(ctx, &t)
}

func (s *Server) save(ctx context.Context, t *Task) (*TaskWithAssignee, error) {
	t.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.bus.PublishLogged(ctx, eventbus.TaskUpdated, eventbus.TaskUpdatedPayload{
		TaskID:    t.ID,
		ProjectID: t.ProjectID,
		Status:    string(t.Status),
		ActorID:   auth.UserID(ctx),
	})
	return s.repo.Get(ctx, t.ID)
}

func (s *Server) Delete(ctx context.Context, id string) (*TaskWithAssignee, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.bus.PublishLogged(ctx, eventbus.TaskDeleted, eventbus.TaskDeletedPayload{TaskID: t.ID, ProjectID: t.ProjectID})
	return t, nil
}

type ProjectSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ImportedTask struct {
	Success bool  `json:"success"`
	Task    *Task `json:"task"`
}

type ImportResults struct {
	Total      int            `json:"total"`
	Successful int            `json:"successful"`
	Failed     int            `json:"failed"`
	Tasks      []ImportedTask `json:"tasks"`
}

type ImportResult struct {
	ImportedAt time.Time      `json:"importedAt"`
	Project    ProjectSummary `json:"project"`
	Results    ImportResults  `json:"results"`
}

// Import creates every task or none. All descriptors are validated before the
// first write and events are published only after the commit.
func (s *Server) Import(ctx context.Context, projectID string, in []CreateInput) (*ImportResult, error) {
	p, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(in) == 0 {
		return nil, cerr.NewInvalidArgument("tasks", "At least one task is required")
	}
	tasks := make([]*Task, 0, len(in))
	for i, d := range in {
		t, err := d.toTask(projectID, fmt.Sprintf("tasks[%d].", i))
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	if err := s.repo.CreateBatch(ctx, projectID, tasks); err != nil {
		return nil, err
	}

	results := make([]ImportedTask, 0, len(tasks))
	for _, t := range tasks {
		s.bus.PublishLogged(ctx, eventbus.TaskCreated, createdPayload(ctx, t, eventbus.ActivityTypeCreate, contentImported))
		results = append(results, ImportedTask{Success: true, Task: t})
	}
	slog.InfoContext(ctx, "tasks imported", "project_id", projectID, "count", len(tasks))

	return &ImportResult{
		ImportedAt: time.Now().UTC(),
		Project:    ProjectSummary{ID: p.ID, Name: p.Name, Slug: p.Slug},
		Results: ImportResults{
			Total:      len(in),
			Successful: len(tasks),
			Failed:     0,
			Tasks:      results,
		},
	}, nil
}

type ExportResult struct {
	ExportedAt time.Time           `json:"exportedAt"`
	Project    ProjectSummary      `json:"project"`
	Tasks      []*TaskWithAssignee `json:"tasks"`
	ArchiveKey string              `json:"archiveKey,omitempty"`
}

// Export returns every task of the project and keeps a copy of the document
// in blob storage under exports/<projectId>/.
func (s *Server) Export(ctx context.Context, projectID string) (*ExportResult, error) {
	p, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	res := &ExportResult{
		ExportedAt: time.Now().UTC(),
		Project:    ProjectSummary{ID: p.ID, Name: p.Name, Slug: p.Slug},
		Tasks:      nonNil(tasks),
	}
	if s.archive == nil {
		return res, nil
	}

	data, err := json.Marshal(res)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", err)
	}
	key := path.Join("exports", projectID, ulid.Make().String()+".json")
	if err := s.archive.Write(ctx, key, data); err != nil {
		return nil, cerr.WrapStorageWriteError("export archive", err)
	}
	res.ArchiveKey = key
	return res, nil
}
