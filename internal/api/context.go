package api

import "context"

type contextKey string

const adminContextKey contextKey = "admin"

// ContextWithAdmin marks the request context as authenticated
func ContextWithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminContextKey, true)
}

// IsAdmin reports whether the context carries an authenticated admin session
func IsAdmin(ctx context.Context) bool {
	admin, ok := ctx.Value(adminContextKey).(bool)
	return ok && admin
}
