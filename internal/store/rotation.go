package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/roomsync/internal/model"
)

// RotationStore persists one chore RotationState per room. Every write is a
// conditional update guarded by the state's version, so concurrent writers
// for the same room are serialized rather than overwriting each other.
type RotationStore struct {
	db *sql.DB
}

func NewRotationStore(db *sql.DB) *RotationStore {
	return &RotationStore{db: db}
}

const rotationCols = `room_id, last_rotation_at, version, created_at, updated_at`
const assignmentCols = `duty, member_id, completed, completed_at`

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

// Get returns the rotation state of roomID, or nil if none exists yet.
func (s *RotationStore) Get(roomID int64) (*model.RotationState, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	state, err := getRotation(tx, roomID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return state, nil
}

func getRotation(q querier, roomID int64) (*model.RotationState, error) {
	state := model.NewRotationState(roomID)
	err := q.QueryRow(`SELECT `+rotationCols+` FROM chore_rotations WHERE room_id = ?`, roomID).
		Scan(&state.RoomID, &state.LastRotationAt, &state.Version, &state.CreatedAt, &state.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rotation: %w", err)
	}

	rows, err := q.Query(`SELECT `+assignmentCols+` FROM chore_assignments WHERE room_id = ?`, roomID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			duty        string
			memberID    int64
			completed   bool
			completedAt sql.NullTime
		)
		if err := rows.Scan(&duty, &memberID, &completed, &completedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		d := model.Duty(duty)
		state.Assignments[d] = memberID
		state.Completed[d] = completed
		if completedAt.Valid {
			state.CompletedAt[d] = completedAt.Time
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return state, nil
}

// Create inserts state if the room has no rotation yet. When another writer
// created it first, the existing state is returned and created is false.
func (s *RotationStore) Create(state *model.RotationState) (stored *model.RotationState, created bool, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO chore_rotations (room_id, last_rotation_at, version) VALUES (?, ?, 1)
		 ON CONFLICT(room_id) DO NOTHING`,
		state.RoomID, state.LastRotationAt.UTC(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert rotation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	if n == 1 {
		if err := insertAssignments(tx, state); err != nil {
			return nil, false, err
		}
		created = true
	}

	stored, err = getRotation(tx, state.RoomID)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit: %w", err)
	}
	return stored, created, nil
}

// Save replaces the persisted state of state.RoomID, provided its version is
// still expectedVersion. It returns ErrConflict otherwise. On success the
// stored version is expectedVersion+1.
func (s *RotationStore) Save(state *model.RotationState, expectedVersion int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE chore_rotations
		 SET last_rotation_at = ?, version = version + 1, updated_at = ?
		 WHERE room_id = ? AND version = ?`,
		state.LastRotationAt.UTC(), time.Now().UTC(), state.RoomID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update rotation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}

	if _, err := tx.Exec(`DELETE FROM chore_assignments WHERE room_id = ?`, state.RoomID); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	if err := insertAssignments(tx, state); err != nil {
		return err
	}
	return tx.Commit()
}

func insertAssignments(tx *sql.Tx, state *model.RotationState) error {
	stmt, err := tx.Prepare(
		`INSERT INTO chore_assignments (room_id, duty, member_id, completed, completed_at) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for duty, memberID := range state.Assignments {
		var completedAt sql.NullTime
		if at, ok := state.CompletedAt[duty]; ok && state.Completed[duty] {
			completedAt = sql.NullTime{Time: at.UTC(), Valid: true}
		}
		if _, err := stmt.Exec(state.RoomID, string(duty), memberID, state.Completed[duty], completedAt); err != nil {
			return fmt.Errorf("insert assignment %q: %w", duty, err)
		}
	}
	return nil
}

// MarkDone flags duty as completed, but only while it is assigned to
// memberID. It reports whether this call changed the flag; marking an
// already completed duty is a no-op. ErrNotAssigned is returned when the
// duty is not held by memberID.
func (s *RotationStore) MarkDone(roomID int64, duty model.Duty, memberID int64, at time.Time) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE chore_assignments SET completed = 1, completed_at = ?
		 WHERE room_id = ? AND duty = ? AND member_id = ? AND completed = 0`,
		at.UTC(), roomID, string(duty), memberID,
	)
	if err != nil {
		return false, fmt.Errorf("mark done: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		var completed bool
		err := tx.QueryRow(
			`SELECT completed FROM chore_assignments WHERE room_id = ? AND duty = ? AND member_id = ?`,
			roomID, string(duty), memberID,
		).Scan(&completed)
		if err == sql.ErrNoRows {
			return false, ErrNotAssigned
		}
		if err != nil {
			return false, fmt.Errorf("get assignment: %w", err)
		}
		return false, nil
	}

	// Bump the version so a concurrent Save computed from the pre-completion
	// state fails its compare-and-swap instead of clearing the flag.
	if _, err := tx.Exec(
		`UPDATE chore_rotations SET version = version + 1, updated_at = ? WHERE room_id = ?`,
		time.Now().UTC(), roomID,
	); err != nil {
		return false, fmt.Errorf("bump version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}
