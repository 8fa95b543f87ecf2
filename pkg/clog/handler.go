package clog

import (
	"io"
	"log/slog"
)

// NewHandler picks the colored text handler for local runs and JSON otherwise,
// wrapping either with the context attribute bag.
func NewHandler(w io.Writer, env string, level slog.Level) slog.Handler {
	var handler slog.Handler
	if env == "local" {
		handler = NewHTTPTextHandler(w, WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return NewAttributesHandler(handler)
}
