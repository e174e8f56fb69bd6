package store

import (
	"testing"

	"github.com/dukerupert/roomsync/internal/database"
	"github.com/dukerupert/roomsync/internal/model"
)

func setupProfileTestDB(t *testing.T) (*ProfileStore, *UserStore, *RoomStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewProfileStore(db), NewUserStore(db), NewRoomStore(db)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestUserProfileRoundTrip(t *testing.T) {
	ps, us, _ := setupProfileTestDB(t)
	u, _ := us.Create("a@example.com", "A")

	in := model.UserProfile{
		UserID: u.ID,
		Lifestyle: model.Lifestyle{
			PersonalityType: strPtr("Introvert"),
			SleepSchedule:   strPtr("Early Bird"),
			Smoker:          boolPtr(false),
			Visitors:        boolPtr(true),
			Hobbies:         []string{"Chess", "Running"},
		},
		MedicalConditions: []string{"Asthma"},
	}
	got, err := ps.UpsertUserProfile(in)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if got.PersonalityType == nil || *got.PersonalityType != "Introvert" {
		t.Errorf("personality = %v, want Introvert", got.PersonalityType)
	}
	if got.FoodHabits != nil {
		t.Errorf("food habits = %q, want unset", *got.FoodHabits)
	}
	if got.Smoker == nil || *got.Smoker {
		t.Errorf("smoker = %v, want explicit false", got.Smoker)
	}
	if got.Drinking != nil {
		t.Errorf("drinking = %v, want unset", *got.Drinking)
	}
	if len(got.Hobbies) != 2 || got.Hobbies[1] != "Running" {
		t.Errorf("hobbies = %v", got.Hobbies)
	}
	if len(got.MedicalConditions) != 1 || got.MedicalConditions[0] != "Asthma" {
		t.Errorf("conditions = %v", got.MedicalConditions)
	}
}

func TestUserProfileUpsertReplaces(t *testing.T) {
	ps, us, _ := setupProfileTestDB(t)
	u, _ := us.Create("a@example.com", "A")

	ps.UpsertUserProfile(model.UserProfile{
		UserID:    u.ID,
		Lifestyle: model.Lifestyle{FoodHabits: strPtr("Vegan"), Hobbies: []string{"Chess"}},
	})
	got, err := ps.UpsertUserProfile(model.UserProfile{
		UserID:    u.ID,
		Lifestyle: model.Lifestyle{NoiseTolerance: strPtr("Low")},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got.FoodHabits != nil {
		t.Error("omitted attribute should become unset")
	}
	if got.Hobbies != nil {
		t.Errorf("hobbies = %v, want none", got.Hobbies)
	}
	if got.NoiseTolerance == nil || *got.NoiseTolerance != "Low" {
		t.Errorf("noise tolerance = %v, want Low", got.NoiseTolerance)
	}
}

func TestUserProfileBlankStringIsUnset(t *testing.T) {
	ps, us, _ := setupProfileTestDB(t)
	u, _ := us.Create("a@example.com", "A")

	got, err := ps.UpsertUserProfile(model.UserProfile{
		UserID:    u.ID,
		Lifestyle: model.Lifestyle{CleanlinessLevel: strPtr("  ")},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got.CleanlinessLevel != nil {
		t.Errorf("cleanliness = %q, want unset", *got.CleanlinessLevel)
	}
}

func TestProfileNotFound(t *testing.T) {
	ps, _, _ := setupProfileTestDB(t)

	up, err := ps.GetUserProfile(42)
	if err != nil {
		t.Fatalf("get user profile: %v", err)
	}
	if up != nil {
		t.Error("expected nil user profile")
	}
	rp, err := ps.GetRoomProfile(42)
	if err != nil {
		t.Fatalf("get room profile: %v", err)
	}
	if rp != nil {
		t.Error("expected nil room profile")
	}
}

func TestRoomProfileRoundTrip(t *testing.T) {
	ps, _, rs := setupProfileTestDB(t)
	room, _ := rs.Create("Flat 4B")

	got, err := ps.UpsertRoomProfile(model.RoomProfile{
		RoomID: room.ID,
		Lifestyle: model.Lifestyle{
			FoodHabits:  strPtr("Flexible"),
			Smoker:      boolPtr(true),
			PetsAllowed: boolPtr(false),
			Hobbies:     []string{"Gaming"},
		},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got.RoomID != room.ID {
		t.Errorf("room id = %d, want %d", got.RoomID, room.ID)
	}
	if got.FoodHabits == nil || *got.FoodHabits != "Flexible" {
		t.Errorf("food habits = %v, want Flexible", got.FoodHabits)
	}
	if got.Smoker == nil || !*got.Smoker {
		t.Errorf("smoker = %v, want true", got.Smoker)
	}
	if got.PetsAllowed == nil || *got.PetsAllowed {
		t.Errorf("pets = %v, want false", got.PetsAllowed)
	}
	if len(got.Hobbies) != 1 || got.Hobbies[0] != "Gaming" {
		t.Errorf("hobbies = %v", got.Hobbies)
	}
}
