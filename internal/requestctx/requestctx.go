// Package requestctx carries the per-request correlation ID through
// context so stores and services can tag logs without importing the
// transport layer.
package requestctx

import "context"

type requestIDKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// GetRequestID returns the correlation ID or "" when the context was not
// built by the request middleware (background jobs, tests).
func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey{}).(string); ok {
		return value
	}
	return ""
}
