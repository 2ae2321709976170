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

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newClockedStore() (*SessionStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	return NewSessionStore(WithClock(clock.Now)), clock
}

func TestSessionStore_Create(t *testing.T) {
	ctx := context.Background()
	st, clock := newClockedStore()

	session := &models.Session{
		SessionID: "0b7e5a52-7a4b-4c1e-9d3f-2a1b3c4d5e6f",
		UserID:    uuid.New(),
		IPAddress: "203.0.113.1",
		UserAgent: "test-agent",
	}
	require.NoError(t, st.Create(ctx, session, 4*time.Hour))

	require.True(t, session.Active)
	require.Equal(t, clock.now, session.CreatedAt)
	require.Equal(t, 4*time.Hour, session.ExpiresAt.Sub(session.CreatedAt))

	got, err := st.GetActive(ctx, session.SessionID)
	require.NoError(t, err)
	require.Equal(t, session.UserID, got.UserID)
	require.Equal(t, "203.0.113.1", got.IPAddress)
	require.Equal(t, "test-agent", got.UserAgent)
}

func TestSessionStore_GetActive_expiryBoundary(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		advance time.Duration
		valid   bool
	}{
		{name: "before expiry", advance: time.Hour - time.Nanosecond, valid: true},
		{name: "exactly at expiry", advance: time.Hour, valid: false},
		{name: "after expiry", advance: time.Hour + time.Second, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, clock := newClockedStore()
			session := &models.Session{SessionID: "s1", UserID: uuid.New()}
			require.NoError(t, st.Create(ctx, session, time.Hour))

			clock.now = clock.now.Add(tt.advance)

			_, err := st.GetActive(ctx, "s1")
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, store.ErrSessionNotFound)
			}
		})
	}
}

func TestSessionStore_Delete(t *testing.T) {
	ctx := context.Background()
	st, _ := newClockedStore()

	require.NoError(t, st.Create(ctx, &models.Session{SessionID: "s1", UserID: uuid.New()}, time.Hour))
	require.NoError(t, st.Delete(ctx, "s1"))

	_, err := st.GetActive(ctx, "s1")
	require.ErrorIs(t, err, store.ErrSessionNotFound)

	require.ErrorIs(t, st.Delete(ctx, "s1"), store.ErrSessionNotFound)
}

func TestSessionStore_Deactivate(t *testing.T) {
	ctx := context.Background()
	st, _ := newClockedStore()
	userID := uuid.New()

	require.NoError(t, st.Create(ctx, &models.Session{SessionID: "s1", UserID: userID}, time.Hour))
	require.NoError(t, st.Create(ctx, &models.Session{SessionID: "s2", UserID: userID}, time.Hour))
	require.NoError(t, st.Create(ctx, &models.Session{SessionID: "s3", UserID: uuid.New()}, time.Hour))

	require.NoError(t, st.Deactivate(ctx, "s1"))
	_, err := st.GetActive(ctx, "s1")
	require.ErrorIs(t, err, store.ErrSessionNotFound)

	require.ErrorIs(t, st.Deactivate(ctx, "missing"), store.ErrSessionNotFound)

	count, err := st.DeactivateByUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	_, err = st.GetActive(ctx, "s2")
	require.ErrorIs(t, err, store.ErrSessionNotFound)

	_, err = st.GetActive(ctx, "s3")
	require.NoError(t, err)
}

func TestSessionStore_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	st, clock := newClockedStore()

	require.NoError(t, st.Create(ctx, &models.Session{SessionID: "short", UserID: uuid.New()}, time.Minute))
	require.NoError(t, st.Create(ctx, &models.Session{SessionID: "long", UserID: uuid.New()}, time.Hour))
	require.NoError(t, st.Create(ctx, &models.Session{SessionID: "revoked", UserID: uuid.New()}, time.Hour))
	require.NoError(t, st.Deactivate(ctx, "revoked"))

	clock.now = clock.now.Add(time.Minute)

	count, err := st.DeleteExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	_, err = st.GetActive(ctx, "long")
	require.NoError(t, err)
	require.ErrorIs(t, st.Delete(ctx, "short"), store.ErrSessionNotFound)
	require.ErrorIs(t, st.Delete(ctx, "revoked"), store.ErrSessionNotFound)
}
