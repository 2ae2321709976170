package models

import (
	"time"

	"github.com/google/uuid"
)

// Session represents a user's authenticated session.
// The session ID is the only value stored in the cookie, all session data lives server-side.
type Session struct {
	SessionID string    // UUIDv4, 36 characters
	UserID    uuid.UUID // Who is logged in

	// Audit metadata captured at login, never re-validated
	IPAddress string
	UserAgent string

	CreatedAt time.Time
	ExpiresAt time.Time
	Active    bool
}

// IsValidAt returns true if the session may be used to authenticate at now.
// Expiry is strict: a session whose ExpiresAt equals now is no longer valid.
func (s *Session) IsValidAt(now time.Time) bool {
	return s.Active && s.ExpiresAt.After(now)
}
