package http

import (
	"context"

	"toolirent/internal/policy"
)

type contextKey string

const (
	callerKey    contextKey = "caller"
	requestIDKey contextKey = "request_id"
)

// WithCaller stores the authenticated caller on the request context.
func WithCaller(ctx context.Context, caller policy.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFrom extracts the authenticated caller. ok is false on
// unauthenticated requests.
func CallerFrom(ctx context.Context) (policy.Caller, bool) {
	caller, ok := ctx.Value(callerKey).(policy.Caller)
	return caller, ok
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
