package ctxlogger

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

type requestIDKey struct{}
type branchKey struct{}

var serviceName atomic.Pointer[string]

// SetServiceName configures the service name added to every log entry.
func SetServiceName(name string) {
	serviceName.Store(&name)
}

// ContextWithRequestID annotates the context with the current request ID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// ContextWithBranch annotates the context with the active branch identifier.
func ContextWithBranch(ctx context.Context, branchID string) context.Context {
	if branchID == "" {
		return ctx
	}
	return context.WithValue(ctx, branchKey{}, branchID)
}

// FromContext returns a logger enriched with request metadata from context.
func FromContext(ctx context.Context) *zap.Logger {
	return WithContext(ctx, zap.L())
}

// WithContext enriches the provided logger using metadata in the context.
func WithContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if ctx == nil {
		return base
	}

	fields := make([]zap.Field, 0, 4)

	name := "unknown"
	if namePtr := serviceName.Load(); namePtr != nil {
		name = *namePtr
	}
	fields = append(fields, zap.String("service", name))

	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok && requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if branchID, ok := ctx.Value(branchKey{}).(string); ok && branchID != "" {
		fields = append(fields, zap.String("branch_id", branchID))
	}

	return base.With(fields...)
}
