package chore

import (
	"fmt"
	"time"

	"github.com/dukerupert/roomsync/internal/model"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// DutyView is one duty of the current rotation period as shown to members.
type DutyView struct {
	Duty         model.Duty `json:"duty"`
	AssigneeID   int64      `json:"assignee_id"`
	AssigneeName string     `json:"assignee_name"`
	Status       Status     `json:"status"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// View is a room's chore board for the current rotation period.
type View struct {
	RoomID         int64      `json:"room_id"`
	Duties         []DutyView `json:"duties"`
	LastRotationAt time.Time  `json:"last_rotation_at"`
	NextRotationAt time.Time  `json:"next_rotation_at"`
}

// Assignee returns the member holding duty, if the duty is in the view.
func (v *View) Assignee(duty model.Duty) (int64, bool) {
	for _, d := range v.Duties {
		if d.Duty == duty {
			return d.AssigneeID, true
		}
	}
	return 0, false
}

// BuildView renders state in duty order. Every duty must be assigned.
func BuildView(state *model.RotationState, duties []model.Duty, members []model.RoomMember, interval time.Duration) (*View, error) {
	names := make(map[int64]string, len(members))
	for _, m := range members {
		names[m.UserID] = m.Name
	}

	view := &View{
		RoomID:         state.RoomID,
		Duties:         make([]DutyView, 0, len(duties)),
		LastRotationAt: state.LastRotationAt,
		NextRotationAt: state.LastRotationAt.Add(interval),
	}
	for _, d := range duties {
		memberID, ok := state.Assignments[d]
		if !ok {
			return nil, fmt.Errorf("room %d duty %q: %w", state.RoomID, d, ErrIncompleteState)
		}
		dv := DutyView{
			Duty:         d,
			AssigneeID:   memberID,
			AssigneeName: names[memberID],
			Status:       StatusPending,
		}
		if state.Completed[d] {
			dv.Status = StatusCompleted
			dv.Completed = true
			if at, ok := state.CompletedAt[d]; ok {
				dv.CompletedAt = &at
			}
		}
		view.Duties = append(view.Duties, dv)
	}
	return view, nil
}
