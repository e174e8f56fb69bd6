// Package auth carries the authenticated caller through request contexts.
package auth

import (
	"context"
	"time"
)

type callerKey struct{}

// Caller is the roommate behind an authenticated request.
type Caller struct {
	UserID    int64
	SessionID int64
	// ExpiresAt is when the caller's session ends. Long-lived connections
	// must not outlive it.
	ExpiresAt time.Time
}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}

// UserID returns the caller's user id, or 0 for unauthenticated contexts.
func UserID(ctx context.Context) int64 {
	c, ok := CallerFrom(ctx)
	if !ok {
		return 0
	}
	return c.UserID
}

// SessionDeadline bounds ctx by the caller's session expiry. Contexts without
// a caller or expiry are returned with a no-op cancel.
func SessionDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	c, ok := CallerFrom(ctx)
	if !ok || c.ExpiresAt.IsZero() {
		return ctx, func() {}
	}
	return context.WithDeadline(ctx, c.ExpiresAt)
}
