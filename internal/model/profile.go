package model

import "time"

// Lifestyle holds the comparable attributes shared by users and rooms.
// A nil pointer means the attribute is not set, which is distinct from a
// false or empty value.
type Lifestyle struct {
	PersonalityType  *string  `json:"personality_type,omitempty"`
	FoodHabits       *string  `json:"food_habits,omitempty"`
	SleepSchedule    *string  `json:"sleep_schedule,omitempty"`
	CleanlinessLevel *string  `json:"cleanliness_level,omitempty"`
	NoiseTolerance   *string  `json:"noise_tolerance,omitempty"`
	Smoker           *bool    `json:"smoker,omitempty"`
	Drinking         *bool    `json:"drinking,omitempty"`
	Visitors         *bool    `json:"visitors,omitempty"`
	PetsAllowed      *bool    `json:"pets_allowed,omitempty"`
	Hobbies          []string `json:"hobbies,omitempty"`
}

type UserProfile struct {
	UserID int64 `json:"user_id"`
	Lifestyle
	MedicalConditions []string  `json:"medical_conditions,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// RoomProfile is the aggregate preference set a room advertises.
type RoomProfile struct {
	RoomID int64 `json:"room_id"`
	Lifestyle
	UpdatedAt time.Time `json:"updated_at"`
}
