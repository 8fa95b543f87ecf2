package activity

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
)

// TaskAuthorizer checks that the caller may see a task.
type TaskAuthorizer interface {
	AuthorizeTask(ctx context.Context, taskID string) error
}

type Server struct {
	repo   Repository
	tasks  task.Repository
	access TaskAuthorizer
}

func NewServer(repo Repository, tasks task.Repository, access TaskAuthorizer) *Server {
	return &Server{repo: repo, tasks: tasks, access: access}
}

func (s *Server) Subscribe(bus *eventbus.Bus) {
	eventbus.SubscribeTyped(bus, eventbus.TaskCreated, "activity.record_task_created", s.onTaskCreated)
}

// onTaskCreated attributes the entry to the actor, falling back to the
// assignee carried by the event.
func (s *Server) onTaskCreated(ctx context.Context, p eventbus.TaskCreatedPayload) error {
	author := p.ActorID
	if author == "" {
		author = p.UserID
	}
	a := &Activity{
		ID:        ulid.Make().String(),
		TaskID:    p.TaskID,
		Type:      p.Type,
		Content:   p.Content,
		CreatedAt: time.Now(),
	}
	if author != "" {
		a.UserID = &author
	}
	return s.repo.Create(ctx, a)
}

func (s *Server) List(ctx context.Context, taskID string) ([]*Entry, error) {
	entries, err := s.repo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return entries, nil
}

type CommentInput struct {
	TaskID  string `json:"taskId"`
	Comment string `json:"comment"`
}

func (s *Server) Comment(ctx context.Context, userID string, in CommentInput) (*Activity, error) {
	content := strings.TrimSpace(in.Comment)
	if content == "" {
		return nil, cerr.NewInvalidArgument("comment", "Comment is required")
	}
	if _, err := s.tasks.Get(ctx, in.TaskID); err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, cerr.NewError(cerr.NotFound, "Task not found", err)
		}
		return nil, err
	}
	a := &Activity{
		ID:        ulid.Make().String(),
		TaskID:    in.TaskID,
		UserID:    &userID,
		Type:      TypeComment,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
