package clog

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
)

type Level int

const (
	LevelDebug Level = iota + 1
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	}
	return slog.LevelError
}

// log goes through the default logger so request attributes are attached.
func (l Level) log(ctx context.Context, msg string) {
	slog.Log(ctx, l.slogLevel(), msg)
}

// HTTPStatusToLevel treats client faults as warnings. 499 is a client that
// went away and logs at info.
func HTTPStatusToLevel(status int) Level {
	switch {
	case status == 499, status >= 100 && status < 400:
		return LevelInfo
	case status >= 400 && status < 500:
		return LevelWarn
	}
	return LevelError
}

// connectCodeLevel reports server-side failures as errors and everything the
// caller caused as info.
func connectCodeLevel(code connect.Code) Level {
	switch code {
	case connect.CodeUnknown,
		connect.CodeResourceExhausted,
		connect.CodeUnimplemented,
		connect.CodeInternal,
		connect.CodeUnavailable,
		connect.CodeDataLoss:
		return LevelError
	}
	return LevelInfo
}
