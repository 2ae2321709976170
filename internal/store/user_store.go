package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/sessionauth/internal/models"
)

// Sentinel errors for user store operations
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserStore defines the interface for user storage operations.
type UserStore interface {
	// Create creates a new user in the store.
	// Returns ErrUserAlreadyExists if a user with the same ID or email already exists.
	Create(ctx context.Context, user *models.User) error

	// Get retrieves a user by ID.
	// Returns ErrUserNotFound if the user doesn't exist.
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by exact email match.
	// Returns ErrUserNotFound if no user has this email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
