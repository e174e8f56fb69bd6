package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dukerupert/roomsync/internal/model"
)

// ProfileStore persists the lifestyle attributes of users and the
// preferences of rooms.
type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

const lifestyleCols = `personality_type, food_habits, sleep_schedule, cleanliness_level, noise_tolerance, smoker, drinking, visitors, pets_allowed, hobbies`

// lifestyleScan holds the nullable column values of a Lifestyle row.
type lifestyleScan struct {
	personality, food, sleep, cleanliness, noise sql.NullString
	smoker, drinking, visitors, pets             sql.NullBool
	hobbies                                      string
}

func (l *lifestyleScan) dest() []any {
	return []any{
		&l.personality, &l.food, &l.sleep, &l.cleanliness, &l.noise,
		&l.smoker, &l.drinking, &l.visitors, &l.pets, &l.hobbies,
	}
}

func (l *lifestyleScan) lifestyle() (model.Lifestyle, error) {
	hobbies, err := decodeList(l.hobbies)
	if err != nil {
		return model.Lifestyle{}, fmt.Errorf("decode hobbies: %w", err)
	}
	return model.Lifestyle{
		PersonalityType:  fromNullString(l.personality),
		FoodHabits:       fromNullString(l.food),
		SleepSchedule:    fromNullString(l.sleep),
		CleanlinessLevel: fromNullString(l.cleanliness),
		NoiseTolerance:   fromNullString(l.noise),
		Smoker:           fromNullBool(l.smoker),
		Drinking:         fromNullBool(l.drinking),
		Visitors:         fromNullBool(l.visitors),
		PetsAllowed:      fromNullBool(l.pets),
		Hobbies:          hobbies,
	}, nil
}

func lifestyleArgs(l model.Lifestyle) ([]any, error) {
	hobbies, err := encodeList(l.Hobbies)
	if err != nil {
		return nil, fmt.Errorf("encode hobbies: %w", err)
	}
	return []any{
		toNullString(l.PersonalityType), toNullString(l.FoodHabits), toNullString(l.SleepSchedule),
		toNullString(l.CleanlinessLevel), toNullString(l.NoiseTolerance),
		toNullBool(l.Smoker), toNullBool(l.Drinking), toNullBool(l.Visitors), toNullBool(l.PetsAllowed),
		hobbies,
	}, nil
}

// --- User profiles ---

func (s *ProfileStore) UpsertUserProfile(p model.UserProfile) (*model.UserProfile, error) {
	args, err := lifestyleArgs(p.Lifestyle)
	if err != nil {
		return nil, err
	}
	conditions, err := encodeList(p.MedicalConditions)
	if err != nil {
		return nil, fmt.Errorf("encode medical conditions: %w", err)
	}
	args = append([]any{p.UserID}, args...)
	args = append(args, conditions)

	_, err = s.db.Exec(
		`INSERT INTO user_profiles (user_id, `+lifestyleCols+`, medical_conditions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   personality_type = excluded.personality_type,
		   food_habits = excluded.food_habits,
		   sleep_schedule = excluded.sleep_schedule,
		   cleanliness_level = excluded.cleanliness_level,
		   noise_tolerance = excluded.noise_tolerance,
		   smoker = excluded.smoker,
		   drinking = excluded.drinking,
		   visitors = excluded.visitors,
		   pets_allowed = excluded.pets_allowed,
		   hobbies = excluded.hobbies,
		   medical_conditions = excluded.medical_conditions,
		   updated_at = CURRENT_TIMESTAMP`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user profile: %w", err)
	}
	return s.GetUserProfile(p.UserID)
}

// GetUserProfile returns the profile of userID, or nil if none was stored.
func (s *ProfileStore) GetUserProfile(userID int64) (*model.UserProfile, error) {
	var (
		ls         lifestyleScan
		conditions string
		p          model.UserProfile
	)
	dest := append([]any{&p.UserID}, ls.dest()...)
	dest = append(dest, &conditions, &p.UpdatedAt)

	err := s.db.QueryRow(
		`SELECT user_id, `+lifestyleCols+`, medical_conditions, updated_at FROM user_profiles WHERE user_id = ?`,
		userID,
	).Scan(dest...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}

	if p.Lifestyle, err = ls.lifestyle(); err != nil {
		return nil, err
	}
	if p.MedicalConditions, err = decodeList(conditions); err != nil {
		return nil, fmt.Errorf("decode medical conditions: %w", err)
	}
	return &p, nil
}

// --- Room profiles ---

func (s *ProfileStore) UpsertRoomProfile(p model.RoomProfile) (*model.RoomProfile, error) {
	args, err := lifestyleArgs(p.Lifestyle)
	if err != nil {
		return nil, err
	}
	args = append([]any{p.RoomID}, args...)

	_, err = s.db.Exec(
		`INSERT INTO room_profiles (room_id, `+lifestyleCols+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(room_id) DO UPDATE SET
		   personality_type = excluded.personality_type,
		   food_habits = excluded.food_habits,
		   sleep_schedule = excluded.sleep_schedule,
		   cleanliness_level = excluded.cleanliness_level,
		   noise_tolerance = excluded.noise_tolerance,
		   smoker = excluded.smoker,
		   drinking = excluded.drinking,
		   visitors = excluded.visitors,
		   pets_allowed = excluded.pets_allowed,
		   hobbies = excluded.hobbies,
		   updated_at = CURRENT_TIMESTAMP`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert room profile: %w", err)
	}
	return s.GetRoomProfile(p.RoomID)
}

// GetRoomProfile returns the preferences of roomID, or nil if none were stored.
func (s *ProfileStore) GetRoomProfile(roomID int64) (*model.RoomProfile, error) {
	var (
		ls lifestyleScan
		p  model.RoomProfile
	)
	dest := append([]any{&p.RoomID}, ls.dest()...)
	dest = append(dest, &p.UpdatedAt)

	err := s.db.QueryRow(
		`SELECT room_id, `+lifestyleCols+`, updated_at FROM room_profiles WHERE room_id = ?`,
		roomID,
	).Scan(dest...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room profile: %w", err)
	}

	if p.Lifestyle, err = ls.lifestyle(); err != nil {
		return nil, err
	}
	return &p, nil
}

// --- helpers ---

// toNullString stores blank strings as NULL so that "" never reads back as a
// set preference.
func toNullString(v *string) sql.NullString {
	if v == nil || strings.TrimSpace(*v) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.TrimSpace(*v), Valid: true}
}

func fromNullString(v sql.NullString) *string {
	if !v.Valid || v.String == "" {
		return nil
	}
	s := v.String
	return &s
}

func toNullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}

func fromNullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}
