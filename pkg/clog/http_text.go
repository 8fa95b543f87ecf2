package clog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/fatih/color"
)

// leadColumns are printed on the header line, ahead of the message.
var leadColumns = []string{"proto", "method", "path", "status"}

// Colors are forced on; handlers created without color bypass them.
var (
	plain    = forced()
	msgColor = forced(color.FgGreen)
	errColor = forced(color.FgRed)

	levelColors = map[slog.Level]*color.Color{
		slog.LevelDebug: forced(color.FgCyan),
		slog.LevelInfo:  forced(color.FgBlue),
		slog.LevelWarn:  forced(color.FgYellow),
		slog.LevelError: forced(color.FgRed),
	}
)

func forced(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

// HTTPTextHandler prints access-log style records for local development: a
// colored header line followed by one indented key=value line per attribute.
type HTTPTextHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	color  bool
	groups []string
	attrs  []slog.Attr
}

type TextHandlerOption func(*HTTPTextHandler)

func WithLevel(level slog.Leveler) TextHandlerOption {
	return func(h *HTTPTextHandler) {
		h.level = level
	}
}

func NewHTTPTextHandler(w io.Writer, opts ...TextHandlerOption) *HTTPTextHandler {
	h := &HTTPTextHandler{
		mu:    &sync.Mutex{},
		w:     w,
		level: slog.LevelInfo,
		color: !color.NoColor,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTPTextHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *HTTPTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(slices.Clip(h.attrs), attrs...)
	return &nh
}

func (h *HTTPTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.groups = append(slices.Clip(h.groups), name)
	return &nh
}

func (h *HTTPTextHandler) paint(buf *bytes.Buffer, c *color.Color, format string, args ...any) {
	if h.color {
		c.Fprintf(buf, format, args...)
		return
	}
	fmt.Fprintf(buf, format, args...)
}

func (h *HTTPTextHandler) Handle(_ context.Context, record slog.Record) error {
	kv := make(map[string]slog.Value, len(h.attrs)+record.NumAttrs())
	for _, a := range h.attrs {
		kv[a.Key] = a.Value
	}
	record.Attrs(func(a slog.Attr) bool {
		kv[a.Key] = a.Value
		return true
	})

	var buf bytes.Buffer
	h.paint(&buf, plain, "%s ", record.Time.Format(time.RFC3339))
	lc, ok := levelColors[record.Level]
	if !ok {
		lc = plain
	}
	h.paint(&buf, lc, "%s ", record.Level)
	for _, key := range leadColumns {
		if v, ok := kv[key]; ok {
			h.paint(&buf, plain, "%s ", v)
			delete(kv, key)
		}
	}
	h.paint(&buf, msgColor, "%s", record.Message)
	if e, ok := kv[ErrorAttributeKey]; ok {
		delete(kv, ErrorAttributeKey)
		h.paint(&buf, errColor, " %s", e)
	}
	buf.WriteByte('\n')

	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, "    %s=%s\n", k, kv[k])
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("can't write log record: %w", err)
	}
	return nil
}
