package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/sessionauth/internal/models"
	"github.com/wolfeidau/sessionauth/internal/store"
)

func newTestUser(email string) *models.User {
	now := time.Now()
	return &models.User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        email,
		PasswordHash: "$2a$10$hash",
		DisplayName:  "Test User",
		Attributes:   map[string]any{"team": "platform"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("create new user", func(t *testing.T) {
		st := NewUserStore()
		require.NoError(t, st.Create(ctx, newTestUser("jane@example.com")))
	})

	t.Run("duplicate email returns error", func(t *testing.T) {
		st := NewUserStore()
		require.NoError(t, st.Create(ctx, newTestUser("jane@example.com")))

		err := st.Create(ctx, newTestUser("jane@example.com"))
		require.ErrorIs(t, err, store.ErrUserAlreadyExists)
	})

	t.Run("duplicate id returns error", func(t *testing.T) {
		st := NewUserStore()
		user := newTestUser("jane@example.com")
		require.NoError(t, st.Create(ctx, user))

		other := newTestUser("john@example.com")
		other.ID = user.ID
		require.ErrorIs(t, st.Create(ctx, other), store.ErrUserAlreadyExists)
	})
}

func TestUserStore_Get(t *testing.T) {
	ctx := context.Background()
	st := NewUserStore()
	user := newTestUser("jane@example.com")
	require.NoError(t, st.Create(ctx, user))

	t.Run("by id", func(t *testing.T) {
		got, err := st.Get(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, user.Email, got.Email)
		require.Equal(t, user.PasswordHash, got.PasswordHash)
	})

	t.Run("by email exact match", func(t *testing.T) {
		got, err := st.GetByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)

		_, err = st.GetByEmail(ctx, "JANE@example.com")
		require.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := st.Get(ctx, uuid.New())
		require.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("returned copies are isolated", func(t *testing.T) {
		got, err := st.Get(ctx, user.ID)
		require.NoError(t, err)
		got.Attributes["team"] = "changed"

		again, err := st.Get(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, "platform", again.Attributes["team"])
	})
}
