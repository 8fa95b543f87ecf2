package clog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributesHandler_AddsContextAttributes(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(NewAttributesHandler(slog.NewJSONHandler(buf, nil)))

	ctx := ContextWithSlog(context.Background())
	AddAttribute(ctx, "user_id", "U1")
	AddError(ctx, errors.New("boom"))
	logger.InfoContext(ctx, "hello")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "hello", got["msg"])
	assert.Equal(t, "U1", got["user_id"])
	assert.Equal(t, "boom", got[ErrorAttributeKey])
}

func TestAddAttributes_MergesNestedMaps(t *testing.T) {
	ctx := ContextWithSlog(context.Background())
	AddAttributes(ctx, map[string]any{"req": map[string]any{"a": 1}})
	AddAttributes(ctx, map[string]any{"req": map[string]any{"b": 2}})

	req := GetAttribute[map[string]any](ctx, "req")
	assert.Equal(t, 1, req["a"])
	assert.Equal(t, 2, req["b"])
}

func TestGetAttribute_WithoutBag(t *testing.T) {
	assert.Nil(t, GetError(context.Background()))
	assert.Empty(t, GetStack(context.Background()))
}

func TestHTTPStatusToLevel(t *testing.T) {
	assert.Equal(t, LevelInfo, HTTPStatusToLevel(http.StatusOK))
	assert.Equal(t, LevelInfo, HTTPStatusToLevel(499))
	assert.Equal(t, LevelWarn, HTTPStatusToLevel(http.StatusNotFound))
	assert.Equal(t, LevelError, HTTPStatusToLevel(http.StatusInternalServerError))
}

func TestSlogChiMiddleware_LogsStatus(t *testing.T) {
	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(NewAttributesHandler(slog.NewJSONHandler(buf, nil))))
	defer slog.SetDefault(prev)

	h := SlogChiMiddleware(WithChiFilter(DefaultChiHealthCheckFilter))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Zero(t, buf.Len())

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/task/1", nil))
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "/api/task/1", got["path"])
	assert.EqualValues(t, http.StatusTeapot, got["status"])
	assert.Equal(t, "WARN", got["level"])
}

func TestHTTPTextHandler_Layout(t *testing.T) {
	buf := &bytes.Buffer{}
	h := NewHTTPTextHandler(buf, WithLevel(slog.LevelInfo))
	h.color = false
	logger := slog.New(h).With("path", "/task/1")

	logger.Debug("hidden")
	logger.Warn("Not Found", "status", 404, "method", "GET", ErrorAttributeKey, "task not found", "zeta", 1, "alpha", 2)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], "WARN GET /task/1 404 Not Found task not found"), lines[0])
	assert.Equal(t, "    alpha=2", lines[1])
	assert.Equal(t, "    zeta=1", lines[2])
}

func TestConnectCall_Levels(t *testing.T) {
	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(NewAttributesHandler(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	defer slog.SetDefault(prev)

	lastLine := func() map[string]any {
		t.Helper()
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &got))
		return got
	}

	_, finish := startConnectCall(context.Background(), connect.Spec{Procedure: "/grpc.health.v1.Health/Check"})
	finish(nil)
	got := lastLine()
	assert.Equal(t, "DEBUG", got["level"])
	assert.Equal(t, "ok", got["code"])

	_, finish = startConnectCall(context.Background(), connect.Spec{Procedure: "/grpc.health.v1.Health/Check"})
	finish(connect.NewError(connect.CodeUnavailable, errors.New("draining")))
	got = lastLine()
	assert.Equal(t, "ERROR", got["level"])
	assert.Equal(t, "unavailable", got["code"])
	assert.Equal(t, "draining", got["msg"])

	_, finish = startConnectCall(context.Background(), connect.Spec{Procedure: "/svc/Get"})
	finish(connect.NewError(connect.CodeNotFound, errors.New("missing")))
	got = lastLine()
	assert.Equal(t, "INFO", got["level"])
	assert.Equal(t, "/svc/Get", got["procedure"])
}
