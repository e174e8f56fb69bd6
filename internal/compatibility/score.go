// Package compatibility scores how well a user's lifestyle fits a room's
// stated preferences.
//
// Each attribute the room specifies is one axis worth one point; the score is
// the share of satisfied axes as a whole percentage. Attributes the room
// leaves unset are not compared at all, so rooms with few preferences are
// scored on the same 0–100 scale as rooms with many.
package compatibility

import (
	"math"
	"strings"

	"github.com/dukerupert/roomsync/internal/model"
)

// Flexible is the room value that satisfies the food and sleep axes for any user.
const Flexible = "Flexible"

// Axis names.
const (
	AxisPersonality    = "personality_type"
	AxisFoodHabits     = "food_habits"
	AxisSleepSchedule  = "sleep_schedule"
	AxisCleanliness    = "cleanliness_level"
	AxisNoiseTolerance = "noise_tolerance"
	AxisSmoker         = "smoker"
	AxisDrinking       = "drinking"
	AxisVisitors       = "visitors"
	AxisPetsAllowed    = "pets_allowed"
	AxisHobbies        = "hobbies"
	AxisSmokeSensitive = "smoke_sensitivity"
)

// DefaultSmokeSensitiveConditions are the medical conditions that count
// against rooms which allow smoking.
var DefaultSmokeSensitiveConditions = []string{"asthma", "copd", "bronchitis", "emphysema"}

// AxisResult is the outcome of one compared axis.
type AxisResult struct {
	Axis    string `json:"axis"`
	Matched bool   `json:"matched"`
}

// Result is a score together with how it was reached.
type Result struct {
	Score   int          `json:"score"`
	Matched int          `json:"matched"`
	Total   int          `json:"total"`
	Axes    []AxisResult `json:"axes"`
}

// Scorer computes compatibility scores. It holds no mutable state and is
// safe for concurrent use.
type Scorer struct {
	smokeSensitive map[string]struct{}
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithSmokeSensitiveConditions replaces the conditions that trigger the
// smoke sensitivity penalty. Matching is case-insensitive.
func WithSmokeSensitiveConditions(conditions []string) Option {
	return func(s *Scorer) {
		if conditions == nil {
			return
		}
		s.smokeSensitive = make(map[string]struct{}, len(conditions))
		for _, c := range conditions {
			if c = normalize(c); c != "" {
				s.smokeSensitive[c] = struct{}{}
			}
		}
	}
}

// NewScorer creates a Scorer using the provided options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{}
	WithSmokeSensitiveConditions(DefaultSmokeSensitiveConditions)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultScorer = NewScorer()

// Score returns the 0–100 fit of user to room using the default Scorer.
func Score(user model.UserProfile, room model.RoomProfile) int {
	return defaultScorer.Score(user, room)
}

// Evaluate scores user against room using the default Scorer.
func Evaluate(user model.UserProfile, room model.RoomProfile) Result {
	return defaultScorer.Evaluate(user, room)
}

// Score returns the 0–100 fit of user to room.
func (s *Scorer) Score(user model.UserProfile, room model.RoomProfile) int {
	return s.Evaluate(user, room).Score
}

// Evaluate scores user against room and reports every compared axis. A room
// without any preference yields a score of 0.
func (s *Scorer) Evaluate(user model.UserProfile, room model.RoomProfile) Result {
	u, r := user.Lifestyle, room.Lifestyle
	var res Result
	add := func(axis string, matched bool) {
		res.Axes = append(res.Axes, AxisResult{Axis: axis, Matched: matched})
		res.Total++
		if matched {
			res.Matched++
		}
	}

	if r.PersonalityType != nil {
		add(AxisPersonality, equalString(u.PersonalityType, *r.PersonalityType))
	}
	if r.FoodHabits != nil {
		add(AxisFoodHabits, *r.FoodHabits == Flexible || equalString(u.FoodHabits, *r.FoodHabits))
	}
	if r.SleepSchedule != nil {
		add(AxisSleepSchedule, *r.SleepSchedule == Flexible || equalString(u.SleepSchedule, *r.SleepSchedule))
	}
	if r.CleanlinessLevel != nil {
		add(AxisCleanliness, equalString(u.CleanlinessLevel, *r.CleanlinessLevel))
	}
	if r.NoiseTolerance != nil {
		add(AxisNoiseTolerance, equalString(u.NoiseTolerance, *r.NoiseTolerance))
	}

	if r.Smoker != nil {
		add(AxisSmoker, equalBool(u.Smoker, *r.Smoker))
	}
	if r.Drinking != nil {
		add(AxisDrinking, equalBool(u.Drinking, *r.Drinking))
	}
	if r.Visitors != nil {
		add(AxisVisitors, equalBool(u.Visitors, *r.Visitors))
	}
	if r.PetsAllowed != nil {
		add(AxisPetsAllowed, equalBool(u.PetsAllowed, *r.PetsAllowed))
	}

	if len(r.Hobbies) > 0 {
		add(AxisHobbies, intersects(u.Hobbies, r.Hobbies))
	}

	// Penalty only: this axis can lower the score but never raise it.
	if r.Smoker != nil && *r.Smoker && s.smokeSensitiveUser(user.MedicalConditions) {
		add(AxisSmokeSensitive, false)
	}

	if res.Total > 0 {
		res.Score = int(math.Round(100 * float64(res.Matched) / float64(res.Total)))
	}
	return res
}

func (s *Scorer) smokeSensitiveUser(conditions []string) bool {
	for _, c := range conditions {
		if _, ok := s.smokeSensitive[normalize(c)]; ok {
			return true
		}
	}
	return false
}

func equalString(user *string, room string) bool {
	return user != nil && *user == room
}

func equalBool(user *bool, room bool) bool {
	return user != nil && *user == room
}

func intersects(a, b []string) bool {
	seen := make(map[string]struct{}, len(a))
	for _, v := range a {
		if v = normalize(v); v != "" {
			seen[v] = struct{}{}
		}
	}
	for _, v := range b {
		if _, ok := seen[normalize(v)]; ok {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
