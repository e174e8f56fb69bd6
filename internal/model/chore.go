package model

import "time"

// Duty is a recurring shared task kind, e.g. "cooking".
type Duty string

// RotationState is the persisted chore rotation of a single room.
type RotationState struct {
	RoomID         int64              `json:"room_id"`
	Assignments    map[Duty]int64     `json:"assignments"`
	Completed      map[Duty]bool      `json:"completed"`
	CompletedAt    map[Duty]time.Time `json:"completed_at"`
	LastRotationAt time.Time          `json:"last_rotation_at"`
	Version        int64              `json:"version"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// NewRotationState returns an empty state for roomID with all maps allocated.
func NewRotationState(roomID int64) *RotationState {
	return &RotationState{
		RoomID:      roomID,
		Assignments: make(map[Duty]int64),
		Completed:   make(map[Duty]bool),
		CompletedAt: make(map[Duty]time.Time),
	}
}

// Clone returns a deep copy of the state.
func (s *RotationState) Clone() *RotationState {
	c := *s
	c.Assignments = make(map[Duty]int64, len(s.Assignments))
	for d, m := range s.Assignments {
		c.Assignments[d] = m
	}
	c.Completed = make(map[Duty]bool, len(s.Completed))
	for d, done := range s.Completed {
		c.Completed[d] = done
	}
	c.CompletedAt = make(map[Duty]time.Time, len(s.CompletedAt))
	for d, at := range s.CompletedAt {
		c.CompletedAt[d] = at
	}
	return &c
}
