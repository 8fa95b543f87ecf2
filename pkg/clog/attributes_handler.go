package clog

import (
	"context"
	"log/slog"
	"slices"
)

// AttributesHandler appends the request's attribute bag to every record, in
// key order so repeated lines diff cleanly.
type AttributesHandler struct {
	next slog.Handler
}

func NewAttributesHandler(next slog.Handler) *AttributesHandler {
	return &AttributesHandler{next: next}
}

func (h *AttributesHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AttributesHandler) Handle(ctx context.Context, record slog.Record) error {
	bag := GetAttributes(ctx)
	if len(bag) == 0 {
		return h.next.Handle(ctx, record)
	}
	keys := make([]string, 0, len(bag))
	for k := range bag {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	record = record.Clone()
	for _, k := range keys {
		record.AddAttrs(slog.Any(k, bag[k]))
	}
	return h.next.Handle(ctx, record)
}

func (h *AttributesHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewAttributesHandler(h.next.WithAttrs(attrs))
}

func (h *AttributesHandler) WithGroup(name string) slog.Handler {
	return NewAttributesHandler(h.next.WithGroup(name))
}
