package cerr

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

type responseReceiverKey struct{}

type responseReceiver struct {
	status   int
	response any
	err      error
	written  bool
}

func contextWithResponseReceiver(ctx context.Context, rr *responseReceiver) context.Context {
	return context.WithValue(ctx, responseReceiverKey{}, rr)
}

func responseReceiverFromContext(ctx context.Context) *responseReceiver {
	if rr, ok := ctx.Value(responseReceiverKey{}).(*responseReceiver); ok {
		return rr
	}
	return nil
}

func SetJSONResponse(ctx context.Context, response any) {
	SetJSONResponseWithStatus(ctx, http.StatusOK, response)
}

func SetJSONResponseWithStatus(ctx context.Context, status int, response any) {
	if rr := responseReceiverFromContext(ctx); rr != nil {
		rr.status = status
		rr.response = response
	}
}

func SetJSONError(ctx context.Context, err error) {
	if rr := responseReceiverFromContext(ctx); rr != nil {
		rr.err = err
	}
}

func SetNewJSONError(ctx context.Context, code Code, msg string, err error) {
	SetJSONError(ctx, NewError(code, msg, err))
}

// MarkWritten tells the middleware that the handler wrote the response itself,
// as streaming handlers do.
func MarkWritten(ctx context.Context) {
	if rr := responseReceiverFromContext(ctx); rr != nil {
		rr.written = true
	}
}

// Respond records either err or resp on the request's receiver.
func Respond(ctx context.Context, resp any, err error) {
	if err != nil {
		SetJSONError(ctx, err)
		return
	}
	SetJSONResponse(ctx, resp)
}

// RespondCreated is Respond with a 201 status on success.
func RespondCreated(ctx context.Context, resp any, err error) {
	if err != nil {
		SetJSONError(ctx, err)
		return
	}
	SetJSONResponseWithStatus(ctx, http.StatusCreated, resp)
}

// DecodeJSON decodes the request body into dst. An empty body leaves dst untouched.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return NewError(InvalidArgument, "invalid JSON body", err)
	}
	return nil
}

func NewConvertConnectErrorChiMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			rr := &responseReceiver{}
			ctx := contextWithResponseReceiver(r.Context(), rr)
			next.ServeHTTP(rw, r.WithContext(ctx))
			if rr.response == nil && rr.err == nil && !rr.written {
				return
			}
			ExtractToHTTPResponse(ctx, rw, rr)
		})
	}
}
