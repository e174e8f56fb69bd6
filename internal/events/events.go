// Package events fans chore activity out to interested listeners: the
// room's websocket clients and, when configured, a NATS subject tree.
package events

import (
	"time"

	"github.com/dukerupert/roomsync/internal/model"
)

const (
	ActionInitialized = "initialized"
	ActionRotated     = "rotated"
	ActionRepaired    = "repaired"
	ActionCompleted   = "completed"
)

// Event describes a change to a room's chore rotation.
type Event struct {
	Action   string       `json:"action"`
	RoomID   int64        `json:"room_id"`
	Duties   []model.Duty `json:"duties,omitempty"`
	MemberID int64        `json:"member_id,omitempty"`
	At       time.Time    `json:"at"`
}

// Publisher delivers events. Implementations must not block the caller on
// slow consumers.
type Publisher interface {
	Publish(ev Event)
}

// Multi publishes every event to each of its publishers in order.
type Multi []Publisher

func (m Multi) Publish(ev Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(ev)
		}
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(Event) {}
