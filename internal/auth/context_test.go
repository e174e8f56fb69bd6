package auth

import (
	"context"
	"testing"
	"time"
)

func TestCallerRoundTrip(t *testing.T) {
	want := Caller{UserID: 1, SessionID: 3, ExpiresAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}

	got, ok := CallerFrom(WithCaller(context.Background(), want))
	if !ok {
		t.Fatal("expected caller in context")
	}
	if got != want {
		t.Errorf("caller = %+v, want %+v", got, want)
	}
}

func TestCallerMissing(t *testing.T) {
	if _, ok := CallerFrom(context.Background()); ok {
		t.Error("expected no caller in empty context")
	}
	if id := UserID(context.Background()); id != 0 {
		t.Errorf("UserID = %d, want 0", id)
	}
}

func TestUserID(t *testing.T) {
	ctx := WithCaller(context.Background(), Caller{UserID: 7})
	if id := UserID(ctx); id != 7 {
		t.Errorf("UserID = %d, want 7", id)
	}
}

func TestSessionDeadline(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	ctx, cancel := SessionDeadline(WithCaller(context.Background(), Caller{UserID: 1, ExpiresAt: expires}))
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok || !deadline.Equal(expires) {
		t.Errorf("deadline = %v (%v), want %v", deadline, ok, expires)
	}

	ctx, cancel = SessionDeadline(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Error("expected no deadline without a caller")
	}
}
