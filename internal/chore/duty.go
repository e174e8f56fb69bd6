package chore

import (
	"fmt"
	"strings"

	"github.com/dukerupert/roomsync/internal/model"
)

// DefaultDuties is the reference duty set in its fixed rotation order.
var DefaultDuties = []model.Duty{
	"cooking",
	"dishwashing",
	"room_cleaning",
	"sweeping",
	"dusting",
	"shopping",
}

// DutySet is an ordered, duplicate-free set of duties. The order is the
// duty ordering the rotation works on and must stay stable between calls.
type DutySet struct {
	order []model.Duty
	index map[model.Duty]int
}

// NewDutySet validates duties and returns them as a DutySet.
func NewDutySet(duties []model.Duty) (DutySet, error) {
	if len(duties) == 0 {
		return DutySet{}, fmt.Errorf("duty set: %w", ErrInvalidDuty)
	}
	set := DutySet{
		order: make([]model.Duty, 0, len(duties)),
		index: make(map[model.Duty]int, len(duties)),
	}
	for _, d := range duties {
		d = ParseDuty(string(d))
		if d == "" {
			return DutySet{}, fmt.Errorf("duty set: blank duty: %w", ErrInvalidDuty)
		}
		if _, dup := set.index[d]; dup {
			return DutySet{}, fmt.Errorf("duty set: duplicate duty %q: %w", d, ErrInvalidDuty)
		}
		set.index[d] = len(set.order)
		set.order = append(set.order, d)
	}
	return set, nil
}

// MustDutySet is like NewDutySet but panics on invalid input.
func MustDutySet(duties []model.Duty) DutySet {
	set, err := NewDutySet(duties)
	if err != nil {
		panic(err)
	}
	return set
}

// Duties returns the duties in rotation order.
func (s DutySet) Duties() []model.Duty {
	out := make([]model.Duty, len(s.order))
	copy(out, s.order)
	return out
}

func (s DutySet) Len() int { return len(s.order) }

func (s DutySet) Contains(d model.Duty) bool {
	_, ok := s.index[d]
	return ok
}

// ParseDuty normalises user input such as "Room Cleaning" or "room-cleaning"
// to the canonical duty key "room_cleaning".
func ParseDuty(s string) model.Duty {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return model.Duty(s)
}
