package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/sessionauth/internal/models"
)

// ErrSessionNotFound is returned when no session matches the lookup.
// For GetActive this covers unknown, expired and inactive sessions alike.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore defines the interface for session storage operations.
//
// Implementations evaluate "now" with their own clock (the database server for
// postgres) so application clock skew cannot make a session look valid.
type SessionStore interface {
	// Create inserts an active session expiring ttl after the store's current time.
	// CreatedAt and ExpiresAt are set on the passed session from the stored row.
	Create(ctx context.Context, session *models.Session, ttl time.Duration) error

	// GetActive returns the session only if it is active and expires_at > now.
	// Returns ErrSessionNotFound otherwise.
	GetActive(ctx context.Context, sessionID string) (*models.Session, error)

	// Delete removes a session row (logout).
	// Returns ErrSessionNotFound if the row doesn't exist.
	Delete(ctx context.Context, sessionID string) error

	// Deactivate flags a session inactive (revocation) without removing it.
	// Returns ErrSessionNotFound if the row doesn't exist.
	Deactivate(ctx context.Context, sessionID string) error

	// DeactivateByUser flags every active session of a user inactive (logout everywhere).
	DeactivateByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// DeleteExpired removes expired and inactive sessions (cleanup job).
	DeleteExpired(ctx context.Context) (int, error)
}
