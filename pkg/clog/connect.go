package clog

import (
	"context"
	"errors"
	"strings"
	"time"

	"connectrpc.com/connect"
)

const healthServicePrefix = "/grpc.health.v1.Health/"

type connectLogger struct{}

// NewSlogConnectInterceptor logs one line per finished connect call with its
// procedure, code and duration. Successful health checks log at debug.
func NewSlogConnectInterceptor() connect.Interceptor {
	return connectLogger{}
}

func (connectLogger) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		ctx, finish := startConnectCall(ctx, req.Spec())
		AddAttribute(ctx, "method", req.HTTPMethod())
		resp, err := next(ctx, req)
		finish(err)
		return resp, err
	}
}

func (connectLogger) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (connectLogger) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		ctx, finish := startConnectCall(ctx, conn.Spec())
		err := next(ctx, conn)
		finish(err)
		return err
	}
}

func startConnectCall(ctx context.Context, spec connect.Spec) (context.Context, func(error)) {
	start := time.Now()
	ctx = ContextWithSlog(ctx)
	AddAttributes(ctx, map[string]any{
		"procedure":   spec.Procedure,
		"stream_type": spec.StreamType.String(),
	})
	return ctx, func(err error) {
		code, level, msg := "ok", LevelInfo, "Finished"
		if err != nil {
			c := connect.CodeOf(err)
			code, level, msg = c.String(), connectCodeLevel(c), err.Error()
			var ce *connect.Error
			if errors.As(err, &ce) {
				msg = ce.Message()
			}
		}
		if level == LevelInfo && strings.HasPrefix(spec.Procedure, healthServicePrefix) {
			level = LevelDebug
		}
		AddAttributes(ctx, map[string]any{
			"code":     code,
			"duration": time.Since(start),
		})
		level.log(ctx, msg)
	}
}
