package chore

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/dukerupert/roomsync/internal/events"
	"github.com/dukerupert/roomsync/internal/model"
	"github.com/dukerupert/roomsync/internal/store"
)

// DefaultRotationInterval is how long a rotation period lasts.
const DefaultRotationInterval = 24 * time.Hour

// maxWriteAttempts caps the compare-and-swap losses TodayView tolerates
// against other rotation or repair writers.
const maxWriteAttempts = 5

// Store persists rotation state. Writes other than Create are conditional:
// Save fails with store.ErrConflict when the state changed since it was read
// and MarkDone fails with store.ErrNotAssigned when the duty moved on.
type Store interface {
	Get(roomID int64) (*model.RotationState, error)
	Create(state *model.RotationState) (*model.RotationState, bool, error)
	Save(state *model.RotationState, expectedVersion int64) error
	MarkDone(roomID int64, duty model.Duty, memberID int64, at time.Time) (bool, error)
}

// Recorder receives rotation metrics.
type Recorder interface {
	StateInitialized()
	RotationPerformed()
	DutiesRepaired(n int)
	ChoreCompleted()
	WriteConflict()
}

type nopRecorder struct{}

func (nopRecorder) StateInitialized()  {}
func (nopRecorder) RotationPerformed() {}
func (nopRecorder) DutiesRepaired(int) {}
func (nopRecorder) ChoreCompleted()    {}
func (nopRecorder) WriteConflict()     {}

// Service evaluates chore rotation lazily: a room's rotation and repair run
// when its board is read, never on a timer.
type Service struct {
	store     Store
	duties    DutySet
	interval  time.Duration
	now       func() time.Time
	publisher events.Publisher
	recorder  Recorder
	logger    *slog.Logger
}

type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService returns a Service rotating duties every interval. A
// non-positive interval falls back to DefaultRotationInterval.
func NewService(st Store, duties DutySet, interval time.Duration, opts ...Option) *Service {
	if interval <= 0 {
		interval = DefaultRotationInterval
	}
	s := &Service{
		store:     st,
		duties:    duties,
		interval:  interval,
		now:       time.Now,
		publisher: events.Nop{},
		recorder:  nopRecorder{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Duties returns the configured duties in rotation order.
func (s *Service) Duties() []model.Duty {
	return s.duties.Duties()
}

// TodayView returns the current chore board of roomID. members must be the
// room's current members in join order. The room's state is created on first
// use, rotated when the interval has elapsed, and repaired so that no duty is
// held by someone who left.
func (s *Service) TodayView(roomID int64, members []model.RoomMember) (*View, error) {
	if len(members) == 0 {
		s.logger.Error("rotation requested for empty room", "room_id", roomID)
		return nil, fmt.Errorf("room %d: %w", roomID, ErrNoMembers)
	}
	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	duties := s.duties.Duties()

	// Every completion bumps the version, so a read racing a burst of
	// completions can lose its compare-and-swap once per duty in the worst
	// case. Those losses are bounded by the number of duties and do not use
	// up the attempts reserved for competing rotation and repair writes.
	var lost *model.RotationState
	conflicts, completionConflicts := 0, 0
	for {
		state, err := s.loadOrCreate(roomID, duties, ids)
		if err != nil {
			return nil, err
		}
		if lost != nil {
			if completionsOnly(lost, state) && completionConflicts < len(duties) {
				completionConflicts++
			} else {
				conflicts++
			}
			if conflicts >= maxWriteAttempts {
				s.logger.Error("rotation write attempts exhausted", "room_id", roomID, "attempts", conflicts+completionConflicts)
				return nil, fmt.Errorf("room %d: %w", roomID, ErrContention)
			}
		}

		next, rotated, repaired := s.reconcile(state, duties, ids)
		if !rotated && len(repaired) == 0 {
			return BuildView(state, duties, members, s.interval)
		}

		err = s.store.Save(next, state.Version)
		if errors.Is(err, store.ErrConflict) {
			// Someone else wrote first; re-read and re-evaluate.
			s.recorder.WriteConflict()
			s.logger.Debug("rotation write conflict", "room_id", roomID, "conflicts", conflicts+completionConflicts+1)
			lost = state
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("save rotation: %w", err)
		}
		next.Version = state.Version + 1

		at := s.now()
		if rotated {
			s.recorder.RotationPerformed()
			s.logger.Info("chores rotated", "room_id", roomID, "members", len(ids))
			s.publisher.Publish(events.Event{Action: events.ActionRotated, RoomID: roomID, Duties: duties, At: at})
		}
		if len(repaired) > 0 {
			s.recorder.DutiesRepaired(len(repaired))
			s.logger.Info("chores repaired", "room_id", roomID, "duties", repaired)
			s.publisher.Publish(events.Event{Action: events.ActionRepaired, RoomID: roomID, Duties: repaired, At: at})
		}
		return BuildView(next, duties, members, s.interval)
	}
}

// completionsOnly reports whether after differs from before only by duties
// having been marked done, and at least one was.
func completionsOnly(before, after *model.RotationState) bool {
	if !after.LastRotationAt.Equal(before.LastRotationAt) || !maps.Equal(before.Assignments, after.Assignments) {
		return false
	}
	for d, done := range before.Completed {
		if done && !after.Completed[d] {
			return false
		}
	}
	for d, done := range after.Completed {
		if done && !before.Completed[d] {
			return true
		}
	}
	return false
}

func (s *Service) loadOrCreate(roomID int64, duties []model.Duty, members []int64) (*model.RotationState, error) {
	state, err := s.store.Get(roomID)
	if err != nil {
		return nil, fmt.Errorf("load rotation: %w", err)
	}
	if state != nil {
		return state, nil
	}

	now := s.now()
	fresh := model.NewRotationState(roomID)
	fresh.Assignments = InitialAssignments(duties, members)
	for _, d := range duties {
		fresh.Completed[d] = false
	}
	fresh.LastRotationAt = now

	state, created, err := s.store.Create(fresh)
	if err != nil {
		return nil, fmt.Errorf("create rotation: %w", err)
	}
	if created {
		s.recorder.StateInitialized()
		s.logger.Info("chores initialized", "room_id", roomID, "duties", len(duties), "members", len(members))
		s.publisher.Publish(events.Event{Action: events.ActionInitialized, RoomID: roomID, Duties: duties, At: now})
	}
	return state, nil
}

// reconcile applies a due rotation and then the membership repair to a copy
// of state.
func (s *Service) reconcile(state *model.RotationState, duties []model.Duty, members []int64) (next *model.RotationState, rotated bool, repaired []model.Duty) {
	next = state.Clone()
	now := s.now()

	if RotationDue(state.LastRotationAt, now, s.interval) {
		next.Assignments = Rotate(duties, state.Assignments, members)
		next.Completed = make(map[model.Duty]bool, len(duties))
		next.CompletedAt = make(map[model.Duty]time.Time)
		for _, d := range duties {
			next.Completed[d] = false
		}
		next.LastRotationAt = now
		rotated = true
	}

	next.Assignments, repaired = Repair(duties, next.Assignments, members)
	for d := range next.Completed {
		if _, ok := next.Assignments[d]; !ok {
			delete(next.Completed, d)
			delete(next.CompletedAt, d)
		}
	}
	return next, rotated, repaired
}

// MarkDone records that memberID finished duty in roomID. Marking a duty that
// is already completed succeeds without changing anything. MarkDone never
// rotates or reassigns.
func (s *Service) MarkDone(roomID, memberID int64, duty model.Duty) error {
	if !s.duties.Contains(duty) {
		return fmt.Errorf("%q: %w", duty, ErrInvalidDuty)
	}

	state, err := s.store.Get(roomID)
	if err != nil {
		return fmt.Errorf("load rotation: %w", err)
	}
	if state == nil {
		return fmt.Errorf("room %d: %w", roomID, ErrNotInitialized)
	}

	now := s.now()
	changed, err := s.store.MarkDone(roomID, duty, memberID, now)
	if errors.Is(err, store.ErrNotAssigned) {
		return fmt.Errorf("%q: %w", duty, ErrNotYourDuty)
	}
	if err != nil {
		return fmt.Errorf("mark done: %w", err)
	}

	if changed {
		s.recorder.ChoreCompleted()
		s.logger.Info("chore completed", "room_id", roomID, "duty", duty, "member_id", memberID)
		s.publisher.Publish(events.Event{
			Action:   events.ActionCompleted,
			RoomID:   roomID,
			Duties:   []model.Duty{duty},
			MemberID: memberID,
			At:       now,
		})
	}
	return nil
}
