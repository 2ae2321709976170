package models

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// User represents an account that can log in with email and password.
type User struct {
	ID           uuid.UUID // UUIDv7
	Email        string    // Unique, matched exactly
	PasswordHash string    // bcrypt, never leaves the store/auth boundary
	DisplayName  string

	// Attributes holds arbitrary profile fields.
	Attributes map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is the sanitized view of a User returned to callers.
type Profile struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	DisplayName string         `json:"display_name,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Clone returns a copy of the user with its own attributes map.
func (u *User) Clone() *User {
	clone := *u
	if u.Attributes != nil {
		clone.Attributes = maps.Clone(u.Attributes)
	}
	return &clone
}
