package login

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/wolfeidau/sessionauth/internal/models"
	"github.com/wolfeidau/sessionauth/internal/store"
)

// ErrProfileNotFound is returned when the user behind a profile lookup doesn't exist.
var ErrProfileNotFound = errors.New("profile not found")

// ResolveProfileByID loads a user and returns its sanitized profile.
func (a *Authenticator) ResolveProfileByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	user, err := a.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return a.SanitizeProfile(user), nil
}

// ResolveProfileByEmail looks a user up by exact email.
func (a *Authenticator) ResolveProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return a.SanitizeProfile(user), nil
}

// SanitizeProfile strips the password hash and configured sensitive attributes from user.
func (a *Authenticator) SanitizeProfile(user *models.User) *models.Profile {
	return SanitizeProfile(user, a.cfg.SensitiveAttributes)
}

// SanitizeProfile builds a profile from user without the password hash or any
// attribute named in sensitive. The returned attributes map is a copy.
func SanitizeProfile(user *models.User, sensitive []string) *models.Profile {
	if user == nil {
		return nil
	}

	var attributes map[string]any
	if user.Attributes != nil {
		attributes = maps.Clone(user.Attributes)
		maps.DeleteFunc(attributes, func(k string, _ any) bool {
			return slices.Contains(sensitive, k)
		})
	}

	return &models.Profile{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Attributes:  attributes,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
