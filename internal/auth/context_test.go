package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/sessionauth/internal/models"
)

func TestContext(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		ac := Anonymous()
		require.False(t, ac.IsAuthenticated())
		require.Nil(t, ac.CurrentUser())
		require.Empty(t, ac.SessionID())
	})

	t.Run("nil is anonymous", func(t *testing.T) {
		var ac *Context
		require.False(t, ac.IsAuthenticated())
		require.Nil(t, ac.CurrentUser())
		require.Empty(t, ac.SessionID())
	})

	t.Run("authenticated then cleared", func(t *testing.T) {
		ac := Anonymous()
		profile := &models.Profile{ID: uuid.New(), Email: "jane@example.com", Attributes: map[string]any{"team": "platform"}}
		ac.SetAuthenticated(profile, "session-1")

		require.True(t, ac.IsAuthenticated())
		require.Equal(t, "session-1", ac.SessionID())
		require.Equal(t, profile.Email, ac.CurrentUser().Email)

		ac.CurrentUser().Attributes["team"] = "changed"
		require.Equal(t, "platform", ac.CurrentUser().Attributes["team"])

		ac.Clear()
		require.False(t, ac.IsAuthenticated())
		require.Empty(t, ac.SessionID())
	})

	t.Run("round trip through context", func(t *testing.T) {
		ac := Anonymous()
		ac.SetAuthenticated(&models.Profile{ID: uuid.New()}, "session-1")

		ctx := WithContext(context.Background(), ac)
		require.Same(t, ac, FromContext(ctx))
	})

	t.Run("missing from context", func(t *testing.T) {
		require.False(t, FromContext(context.Background()).IsAuthenticated())
	})
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
	})

	t.Run("authenticated", func(t *testing.T) {
		ac := Anonymous()
		ac.SetAuthenticated(&models.Profile{ID: uuid.New()}, "session-1")

		r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		r = r.WithContext(WithContext(r.Context(), ac))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
