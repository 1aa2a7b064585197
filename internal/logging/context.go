package logging

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	// TraceIDKey carries the request trace id.
	TraceIDKey contextKey = "trace_id"
	// UserIDKey carries the authenticated user id.
	UserIDKey contextKey = "user_id"
	// RoleKey carries "admin" or "user" for authenticated requests.
	RoleKey contextKey = "role"
)

// NewTraceID returns a fresh random trace id.
func NewTraceID() string {
	return uuid.NewString()
}

// WithTraceID stores the trace id on ctx.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID returns the trace id stored on ctx, if any.
func GetTraceID(ctx context.Context) string {
	return stringValue(ctx, TraceIDKey)
}

// WithUser stores the authenticated user id and role on ctx.
func WithUser(ctx context.Context, userID, role string) context.Context {
	if userID != "" {
		ctx = context.WithValue(ctx, UserIDKey, userID)
	}
	if role != "" {
		ctx = context.WithValue(ctx, RoleKey, role)
	}
	return ctx
}

// GetUserID returns the user id stored on ctx, if any.
func GetUserID(ctx context.Context) string {
	return stringValue(ctx, UserIDKey)
}

// GetRole returns the role stored on ctx, if any.
func GetRole(ctx context.Context) string {
	return stringValue(ctx, RoleKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
