package store

import (
	"errors"
	"testing"

	"github.com/dukerupert/roomsync/internal/database"
)

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func TestUserCreateAndGet(t *testing.T) {
	s := setupUserTestDB(t)

	u, err := s.Create("alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if u.Email != "alice@example.com" || u.Name != "Alice" {
		t.Errorf("got %+v", u)
	}

	got, err := s.GetByID(u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Name != "Alice" {
		t.Errorf("get = %+v, want Alice", got)
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	s := setupUserTestDB(t)

	if _, err := s.Create("alice@example.com", "Alice"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(" Alice@Example.com ", "Alice Two"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}
}

func TestUserCreateRequiresNameAndEmail(t *testing.T) {
	s := setupUserTestDB(t)

	if _, err := s.Create("", "Alice"); err == nil {
		t.Error("expected error for blank email")
	}
	if _, err := s.Create("alice@example.com", "  "); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestUserGetByEmail(t *testing.T) {
	s := setupUserTestDB(t)

	created, err := s.Create("Bob@Example.com", " Bob ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Email != "bob@example.com" || created.Name != "Bob" {
		t.Errorf("created = %+v, want normalized email and trimmed name", created)
	}

	got, err := s.GetByEmail("BOB@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Errorf("get by email = %+v, want id %d", got, created.ID)
	}

	missing, err := s.GetByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown email")
	}
}

func TestUserGetNotFound(t *testing.T) {
	s := setupUserTestDB(t)

	u, err := s.GetByID(999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u != nil {
		t.Error("expected nil for non-existent user")
	}
}

func TestUserDelete(t *testing.T) {
	s := setupUserTestDB(t)

	u, _ := s.Create("alice@example.com", "Alice")
	if err := s.Delete(u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := s.GetByID(u.ID); got != nil {
		t.Error("expected nil after delete")
	}
}
