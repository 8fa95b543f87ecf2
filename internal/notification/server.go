package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/pushnotification"
)

// Pusher forwards a notification to the user's browsers.
type Pusher interface {
	SendToUser(ctx context.Context, userID string, payload *pushnotification.NotificationPayload) int
}

type Server struct {
	repo   Repository
	pusher Pusher
}

// NewServer builds the server. pusher may be nil.
func NewServer(repo Repository, pusher Pusher) *Server {
	return &Server{repo: repo, pusher: pusher}
}

func (s *Server) Subscribe(bus *eventbus.Bus) {
	eventbus.SubscribeTyped(bus, eventbus.TaskCreated, "notification.notify_assignee", s.onTaskCreated)
}

// onTaskCreated notifies the assignee unless they created the task themselves.
func (s *Server) onTaskCreated(ctx context.Context, p eventbus.TaskCreatedPayload) error {
	if p.UserID == "" || p.UserID == p.ActorID {
		return nil
	}
	title := p.Title
	if title == "" {
		title = "a task"
	}
	n := &Notification{
		ID:           ulid.Make().String(),
		UserID:       p.UserID,
		Type:         TypeTaskAssigned,
		Title:        "New task assigned",
		Content:      fmt.Sprintf("You were assigned to %q", title),
		ResourceID:   p.TaskID,
		ResourceType: ResourceTask,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	if s.pusher != nil {
		delivered := s.pusher.SendToUser(ctx, n.UserID, &pushnotification.NotificationPayload{
			Title: n.Title,
			Body:  n.Content,
			URL:   fmt.Sprintf("/projects/%s/tasks/%s", p.ProjectID, p.TaskID),
			Tag:   n.ID,
		})
		slog.DebugContext(ctx, "assignment pushed", "notification_id", n.ID, "delivered", delivered)
	}
	return nil
}

func (s *Server) List(ctx context.Context, userID string) ([]*Notification, error) {
	ns, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		ns = []*Notification{}
	}
	return ns, nil
}

func (s *Server) MarkRead(ctx context.Context, userID, id string) (*Notification, error) {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Server) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Server) Clear(ctx context.Context, userID string) (int64, error) {
	return s.repo.DeleteAll(ctx, userID)
}
