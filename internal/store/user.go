package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/roomsync/internal/model"
)

// UserStore holds the accounts of roommates. Accounts are provisioned by the
// identity service; this service only needs names for the chore board and
// ids for scoring.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, email, name, created_at, updated_at`

// NormalizeEmail lowercases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create adds a roommate. A second account for the same email fails with
// ErrDuplicate.
func (s *UserStore) Create(email, name string) (*model.User, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return nil, fmt.Errorf("insert user: email and name are required")
	}

	result, err := s.db.Exec(`INSERT INTO users (email, name) VALUES (?, ?)`, email, name)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("insert user %s: %w", email, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	return s.getOne(`id = ?`, id)
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	return s.getOne(`email = ?`, NormalizeEmail(email))
}

func (s *UserStore) getOne(where string, arg any) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Delete removes a user together with their sessions, profile and room
// membership. Duties they held are reassigned on the next board read.
func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
