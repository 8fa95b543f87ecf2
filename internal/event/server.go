package event

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/clog"
)

const (
	watchBuffer       = 64
	heartbeatInterval = 15 * time.Second
)

// ProjectAuthorizer checks that the caller may follow a project.
type ProjectAuthorizer interface {
	AuthorizeProject(ctx context.Context, projectID string) error
}

// Server streams the traffic of one project to browsers as server-sent
// events.
type Server struct {
	bus       *eventbus.Bus
	projects  ProjectAuthorizer
	heartbeat time.Duration
}

func NewServer(bus *eventbus.Bus, projects ProjectAuthorizer) *Server {
	return &Server{bus: bus, projects: projects, heartbeat: heartbeatInterval}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/event/stream", s.handleStream)
}

type filter struct {
	projectID string
	names     map[eventbus.Name]struct{}
}

func newFilter(r *http.Request) filter {
	q := r.URL.Query()
	f := filter{projectID: q.Get("projectId")}
	if raw := q.Get("events"); raw != "" {
		f.names = make(map[eventbus.Name]struct{})
		for _, n := range strings.Split(raw, ",") {
			if n = strings.TrimSpace(n); n != "" {
				f.names[eventbus.Name(n)] = struct{}{}
			}
		}
	}
	return f
}

func (f filter) match(ev *eventbus.Event) bool {
	pid, ok := ev.Metadata[eventbus.MetadataProjectID]
	if !ok {
		return false
	}
	if pid != f.projectID {
		return false
	}
	if f.names != nil {
		if _, ok := f.names[ev.Name]; !ok {
			return false
		}
	}
	return true
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flusher, ok := w.(http.Flusher)
	if !ok {
		cerr.SetNewJSONError(ctx, cerr.Unimplemented, "streaming unsupported", nil)
		return
	}
	f := newFilter(r)
	if f.projectID == "" {
		cerr.SetJSONError(ctx, cerr.NewInvalidArgument("projectId", "projectId is required"))
		return
	}
	if err := s.projects.AuthorizeProject(ctx, f.projectID); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	id, ch := s.bus.Watch(watchBuffer)
	defer s.bus.Unwatch(id)

	cerr.MarkWritten(ctx)
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	if err := s.stream(ctx, w, flusher, ch, f); err != nil {
		slog.DebugContext(ctx, "event stream closed", clog.ErrorAttributeKey, err)
	}
}

func (s *Server) stream(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, ch <-chan *eventbus.Event, f filter) error {
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return err
			}
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if !f.match(ev) {
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Name, ev.Payload); err != nil {
				return err
			}
			flusher.Flush()
		}
	}
}
