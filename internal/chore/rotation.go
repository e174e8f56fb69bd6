package chore

import (
	"slices"
	"time"

	"github.com/dukerupert/roomsync/internal/model"
)

// InitialAssignments deals duties out to members round-robin: the i-th duty
// goes to members[i % len(members)]. It returns nil if members is empty.
func InitialAssignments(duties []model.Duty, members []int64) map[model.Duty]int64 {
	if len(members) == 0 {
		return nil
	}
	out := make(map[model.Duty]int64, len(duties))
	for i, d := range duties {
		out[d] = members[i%len(members)]
	}
	return out
}

// RotationDue reports whether at least interval has passed since last.
func RotationDue(last, now time.Time, interval time.Duration) bool {
	return now.Sub(last) >= interval
}

// Rotate computes the next assignment from prev.
//
// The previous assignees are read in duty order, with any assignee who is no
// longer a member replaced by members[0]. That sequence is shifted left by
// one, so duty i receives whoever held duty i+1 and the last duty receives
// whoever held the first. Should a shifted assignee still not be a member,
// duty i falls back to members[i % len(members)].
//
// With a stable member list of the same length as duties, every member
// returns to their original duty after len(duties) rotations. With fewer
// members some hold several duties. Rotate returns nil if members is empty.
func Rotate(duties []model.Duty, prev map[model.Duty]int64, members []int64) map[model.Duty]int64 {
	if len(members) == 0 {
		return nil
	}
	k := len(duties)
	seq := make([]int64, k)
	for i, d := range duties {
		id, ok := prev[d]
		if !ok || !slices.Contains(members, id) {
			id = members[0]
		}
		seq[i] = id
	}

	out := make(map[model.Duty]int64, k)
	for i, d := range duties {
		id := seq[(i+1)%k]
		if !slices.Contains(members, id) {
			id = members[i%len(members)]
		}
		out[d] = id
	}
	return out
}

// Repair reassigns every duty whose assignee is not in members, and every
// duty missing from assignments, to members[i % len(members)] where i is the
// duty's position. Entries for duties outside the set are dropped. It returns
// the repaired copy together with the duties that changed.
func Repair(duties []model.Duty, assignments map[model.Duty]int64, members []int64) (map[model.Duty]int64, []model.Duty) {
	if len(members) == 0 {
		return nil, nil
	}
	out := make(map[model.Duty]int64, len(duties))
	var changed []model.Duty
	for i, d := range duties {
		id, ok := assignments[d]
		if !ok || !slices.Contains(members, id) {
			id = members[i%len(members)]
			changed = append(changed, d)
		}
		out[d] = id
	}
	for d := range assignments {
		if !slices.Contains(duties, d) {
			changed = append(changed, d)
		}
	}
	return out, changed
}
