package cerr

import (
	"context"

	"connectrpc.com/connect"
)

// connectErrors turns errors returned by connect handlers into connect errors
// carrying the matching code. The original error goes to the request log.
type connectErrors struct{}

func NewConvertConnectErrorInterceptor() connect.Interceptor {
	return connectErrors{}
}

func (connectErrors) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		resp, err := next(ctx, req)
		return resp, ExtractConnectError(ctx, err)
	}
}

// WrapStreamingClient is a no-op; the server only handles calls.
func (connectErrors) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (connectErrors) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		return ExtractConnectError(ctx, next(ctx, conn))
	}
}
