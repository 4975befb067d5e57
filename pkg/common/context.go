package common

import (
	"context"
)

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeyIdentityID ContextKey = "identity_id"
	ContextKeyRole       ContextKey = "role"
	ContextKeyRequestID  ContextKey = "request_id"
)

// WithIdentity adds the authenticated caller's id and role to context.
func WithIdentity(ctx context.Context, identityID, role string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyIdentityID, identityID)
	return context.WithValue(ctx, ContextKeyRole, role)
}

// GetIdentityID extracts the authenticated caller's id from context.
func GetIdentityID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyIdentityID).(string)
	return id, ok
}

// GetRole extracts the authenticated caller's role from context.
func GetRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(ContextKeyRole).(string)
	return role, ok
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(ContextKeyRequestID).(string)
	return requestID, ok
}
