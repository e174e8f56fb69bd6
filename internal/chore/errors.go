package chore

import "errors"

var (
	// Caller errors.
	ErrInvalidDuty    = errors.New("invalid duty")
	ErrNotYourDuty    = errors.New("duty is not assigned to you")
	ErrNotInitialized = errors.New("chores not initialized for room")

	// Invariant violations.
	ErrNoMembers       = errors.New("room has no members")
	ErrIncompleteState = errors.New("rotation state is missing a duty")

	// ErrContention is returned when a room's state kept changing underneath
	// every write attempt.
	ErrContention = errors.New("rotation state contention")
)
