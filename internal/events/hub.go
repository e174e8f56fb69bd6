package events

import (
	"github.com/dukerupert/roomsync/internal/websocket"
)

// HubPublisher forwards events to the websocket clients of the event's room.
type HubPublisher struct {
	hub *websocket.Hub
}

func NewHubPublisher(hub *websocket.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(ev Event) {
	extra := map[string]any{"at": ev.At}
	if len(ev.Duties) > 0 {
		extra["duties"] = ev.Duties
	}
	if ev.MemberID != 0 {
		extra["member_id"] = ev.MemberID
	}
	p.hub.Broadcast(ev.RoomID, websocket.NewMessage("chore", ev.Action, ev.RoomID, extra))
}
