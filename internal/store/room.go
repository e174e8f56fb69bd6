package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/roomsync/internal/model"
)

// RoomStore is the room membership provider: it answers which users live in
// a room, in join order, and which room a user lives in.
type RoomStore struct {
	db *sql.DB
}

func NewRoomStore(db *sql.DB) *RoomStore {
	return &RoomStore{db: db}
}

func scanRoom(scanner interface{ Scan(...any) error }) (*model.Room, error) {
	var r model.Room
	err := scanner.Scan(&r.ID, &r.Title, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanRoomMember(scanner interface{ Scan(...any) error }) (*model.RoomMember, error) {
	var m model.RoomMember
	err := scanner.Scan(&m.ID, &m.RoomID, &m.UserID, &m.Name, &m.JoinedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const roomCols = `id, title, created_at, updated_at`
const roomMemberCols = `rm.id, rm.room_id, rm.user_id, u.name, rm.joined_at`

func (s *RoomStore) Create(title string) (*model.Room, error) {
	result, err := s.db.Exec(`INSERT INTO rooms (title) VALUES (?)`, title)
	if err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RoomStore) GetByID(id int64) (*model.Room, error) {
	row := s.db.QueryRow(`SELECT `+roomCols+` FROM rooms WHERE id = ?`, id)
	r, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return r, nil
}

func (s *RoomStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}

// AddMember records userID joining roomID now.
func (s *RoomStore) AddMember(roomID, userID int64) (*model.RoomMember, error) {
	return s.AddMemberAt(roomID, userID, time.Now())
}

// AddMemberAt records userID joining roomID at joinedAt. A user can only
// belong to one room; joining a second room fails with ErrDuplicate.
func (s *RoomStore) AddMemberAt(roomID, userID int64, joinedAt time.Time) (*model.RoomMember, error) {
	result, err := s.db.Exec(
		`INSERT INTO room_members (room_id, user_id, joined_at) VALUES (?, ?, ?)`,
		roomID, userID, joinedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("add member %d to room %d: %w", userID, roomID, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(
		`SELECT `+roomMemberCols+` FROM room_members rm JOIN users u ON u.id = rm.user_id WHERE rm.id = ?`,
		id,
	)
	return scanRoomMember(row)
}

func (s *RoomStore) RemoveMember(roomID, userID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM room_members WHERE room_id = ? AND user_id = ?`,
		roomID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

// MembershipForUser returns the room membership of userID, or nil when the
// user does not live in any room.
func (s *RoomStore) MembershipForUser(userID int64) (*model.RoomMember, error) {
	row := s.db.QueryRow(
		`SELECT `+roomMemberCols+` FROM room_members rm JOIN users u ON u.id = rm.user_id WHERE rm.user_id = ?`,
		userID,
	)
	m, err := scanRoomMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

// ListMembers returns the members of roomID in join order.
func (s *RoomStore) ListMembers(roomID int64) ([]model.RoomMember, error) {
	rows, err := s.db.Query(
		`SELECT `+roomMemberCols+`
		 FROM room_members rm
		 JOIN users u ON u.id = rm.user_id
		 WHERE rm.room_id = ?
		 ORDER BY rm.joined_at ASC, rm.id ASC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.RoomMember
	for rows.Next() {
		m, err := scanRoomMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}
