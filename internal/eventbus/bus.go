package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sourcegraph/conc"

	"github.com/kazz187/taskboard/pkg/clog"
	"github.com/kazz187/taskboard/pkg/panicerr"
)

// Event is a published message. Payload holds the JSON encoding of the value
// given to Publish, so every handler decodes its own copy.
type Event struct {
	ID        string            `json:"id"`
	Name      Name              `json:"name"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

type Handler func(ctx context.Context, ev *Event) error

type namedHandler struct {
	name string
	fn   Handler
}

// Bus is an in-process publish/subscribe registry. Handlers run on their own
// goroutines and are not retried; nothing is persisted.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Name][]namedHandler
	watchers map[string]chan *Event
	wg       conc.WaitGroup
}

func New() *Bus {
	return &Bus{
		handlers: make(map[Name][]namedHandler),
		watchers: make(map[string]chan *Event),
	}
}

// Subscribe registers handler under handlerName for events called name.
func (b *Bus) Subscribe(name Name, handlerName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], namedHandler{name: handlerName, fn: handler})
}

// SubscribeTyped is Subscribe with the payload decoded into T.
func SubscribeTyped[T any](b *Bus, name Name, handlerName string, handler func(ctx context.Context, payload T) error) {
	b.Subscribe(name, handlerName, func(ctx context.Context, ev *Event) error {
		var payload T
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", ev.Name, err)
		}
		return handler(ctx, payload)
	})
}

// Publish dispatches payload to every handler registered for name and to every
// watcher. It returns once the handlers are scheduled.
func (b *Bus) Publish(ctx context.Context, name Name, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", name, err)
	}
	ev := &Event{
		ID:        ulid.Make().String(),
		Name:      name,
		Payload:   raw,
		CreatedAt: time.Now(),
	}
	if m, ok := payload.(metadataCarrier); ok {
		ev.Metadata = m.EventMetadata()
	}
	b.dispatch(ctx, ev)
	return nil
}

// PublishLogged is Publish for callers that have already committed their
// write and can only log a failure.
func (b *Bus) PublishLogged(ctx context.Context, name Name, payload any) {
	if err := b.Publish(ctx, name, payload); err != nil {
		slog.ErrorContext(ctx, "failed to publish event", "event", string(name), clog.ErrorAttributeKey, err)
	}
}

func (b *Bus) dispatch(ctx context.Context, ev *Event) {
	b.mu.RLock()
	handlers := make([]namedHandler, len(b.handlers[ev.Name]))
	copy(handlers, b.handlers[ev.Name])
	for _, ch := range b.watchers {
		select {
		case ch <- ev:
		default:
			// watcher buffer full, drop
		}
	}
	b.mu.RUnlock()

	hctx := context.WithoutCancel(ctx)
	for _, h := range handlers {
		b.wg.Go(func() {
			run := panicerr.SafeContext(func(ctx context.Context) error {
				return h.fn(ctx, ev)
			})
			if err := run(hctx); err != nil {
				slog.ErrorContext(hctx, "event handler failed",
					"event", string(ev.Name),
					"handler", h.name,
					clog.ErrorAttributeKey, err,
				)
			}
		})
	}
}

// Wait blocks until every handler scheduled so far has returned.
func (b *Bus) Wait() {
	b.wg.Wait()
}

// Watch returns a channel receiving every published event. Sends never block;
// events are dropped while the buffer is full.
func (b *Bus) Watch(bufSize int) (string, <-chan *Event) {
	id := ulid.Make().String()
	ch := make(chan *Event, bufSize)
	b.mu.Lock()
	b.watchers[id] = ch
	b.mu.Unlock()
	return id, ch
}

func (b *Bus) Unwatch(id string) {
	b.mu.Lock()
	if ch, ok := b.watchers[id]; ok {
		close(ch)
		delete(b.watchers, id)
	}
	b.mu.Unlock()
}
