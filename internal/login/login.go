// Package login implements email/password login with server-side sessions
// referenced by an opaque cookie.
package login

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfeidau/sessionauth/internal/auth"
	httpmiddleware "github.com/wolfeidau/sessionauth/internal/http"
	"github.com/wolfeidau/sessionauth/internal/models"
	"github.com/wolfeidau/sessionauth/internal/sessionid"
	"github.com/wolfeidau/sessionauth/internal/store"
	"github.com/wolfeidau/sessionauth/internal/telemetry"
)

// Authenticator runs the session lifecycle: bootstrap, login, logout and revocation.
// It holds no per-request state, the result of each operation lives in the
// auth.Context passed to it.
type Authenticator struct {
	users    store.UserStore
	sessions store.SessionStore
	cfg      Config

	dummyHash func() []byte
	metrics   *telemetry.Metrics
}

// New creates an Authenticator. Unset config fields fall back to DefaultConfig.
func New(users store.UserStore, sessions store.SessionStore, cfg Config) *Authenticator {
	defaults := DefaultConfig()
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = defaults.SessionTTL
	}
	if cfg.CookieTTL == 0 {
		cfg.CookieTTL = defaults.CookieTTL
	}
	if cfg.Cookie.Name == "" {
		cfg.Cookie.Name = defaults.Cookie.Name
	}
	if cfg.Cookie.Path == "" {
		cfg.Cookie.Path = defaults.Cookie.Path
	}
	if cfg.PasswordCost == 0 {
		cfg.PasswordCost = defaults.PasswordCost
	}
	if cfg.IDs == nil {
		cfg.IDs = defaults.IDs
	}

	cost := cfg.PasswordCost
	return &Authenticator{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		dummyHash: sync.OnceValue(func() []byte {
			hash, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
			return hash
		}),
		metrics: telemetry.GetMetrics(),
	}
}

// Config returns the effective configuration.
func (a *Authenticator) Config() Config {
	return a.cfg
}

// Bootstrap resolves the authentication state of a request from its session cookie.
//
// A missing cookie yields an anonymous context. A cookie that does not match an
// active, unexpired session, or whose user no longer exists, triggers an implicit
// logout. Only store failures are returned as errors.
func (a *Authenticator) Bootstrap(w http.ResponseWriter, r *http.Request) (*auth.Context, error) {
	ctx := r.Context()
	ac := auth.Anonymous()

	cookie, err := r.Cookie(a.cfg.Cookie.Name)
	if err != nil || cookie.Value == "" {
		a.recordBootstrap(ctx, "anonymous")
		return ac, nil
	}

	// Malformed ids can't have a row, so there is nothing to look up or delete
	if !sessionid.Valid(cookie.Value) {
		log.Debug().Msg("Malformed session cookie, clearing")
		a.clearCookie(w)
		a.recordBootstrap(ctx, "implicit_logout")
		return ac, nil
	}

	session, err := a.sessions.GetActive(ctx, cookie.Value)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			a.implicitLogout(ctx, w, cookie.Value)
			return ac, nil
		}
		a.recordBootstrap(ctx, "error")
		return ac, fmt.Errorf("failed to load session: %w", err)
	}

	profile, err := a.ResolveProfileByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			a.implicitLogout(ctx, w, cookie.Value)
			return ac, nil
		}
		a.recordBootstrap(ctx, "error")
		return ac, err
	}

	ac.SetAuthenticated(profile, session.SessionID)
	a.recordBootstrap(ctx, "authenticated")

	return ac, nil
}

// Login verifies email and password and, on success, creates a session, sets the
// session cookie and loads the profile into ac.
//
// Unknown email and wrong password both return false with a nil error. An error
// is only returned for store or session id generation failures, in which case
// nothing was written.
func (a *Authenticator) Login(w http.ResponseWriter, r *http.Request, ac *auth.Context, email, password string) (bool, error) {
	ctx, span := telemetry.Tracer().Start(r.Context(), "login.Login")
	defer span.End()
	start := time.Now()

	ok, err := a.login(w, r.WithContext(ctx), ac, email, password)

	result := "success"
	switch {
	case err != nil:
		result = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
	case !ok:
		result = "invalid_credentials"
	}
	span.SetAttributes(attribute.String("login.result", result))
	attrs := metric.WithAttributes(attribute.String("result", result))
	a.metrics.LoginsTotal.Add(ctx, 1, attrs)
	a.metrics.LoginDuration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)

	return ok, err
}

func (a *Authenticator) login(w http.ResponseWriter, r *http.Request, ac *auth.Context, email, password string) (bool, error) {
	ctx := r.Context()

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Same work as a real mismatch so response time doesn't reveal registered emails
			_ = bcrypt.CompareHashAndPassword(a.dummyHash(), []byte(password))
			log.Debug().Msg("Login failed: invalid credentials")
			return false, nil
		}
		return false, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		log.Debug().Str("user_id", user.ID.String()).Msg("Login failed: invalid credentials")
		return false, nil
	}

	id, err := a.cfg.IDs.New()
	if err != nil {
		return false, fmt.Errorf("failed to generate session id: %w", err)
	}

	session := &models.Session{
		SessionID: id,
		UserID:    user.ID,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}
	if err := a.sessions.Create(ctx, session, a.cfg.SessionTTL); err != nil {
		return false, fmt.Errorf("failed to create session: %w", err)
	}

	a.setCookie(w, id)
	ac.SetAuthenticated(a.SanitizeProfile(user), id)
	a.metrics.SessionsCreatedTotal.Add(ctx, 1)

	log.Info().
		Str("user_id", user.ID.String()).
		Str("ip_address", session.IPAddress).
		Time("expires_at", session.ExpiresAt).
		Msg("User logged in")

	return true, nil
}

// Logout deletes the request's session, expires the cookie and clears ac.
// It is safe to call whether or not the request is authenticated, and store
// failures are logged rather than returned.
func (a *Authenticator) Logout(w http.ResponseWriter, r *http.Request, ac *auth.Context) {
	ctx := r.Context()

	if cookie, err := r.Cookie(a.cfg.Cookie.Name); err == nil && cookie.Value != "" {
		a.deleteSession(ctx, cookie.Value, "logout")
	}

	a.clearCookie(w)
	if ac != nil {
		ac.Clear()
	}
}

// RevokeSession flags a single session inactive.
func (a *Authenticator) RevokeSession(ctx context.Context, sessionID string) error {
	if err := a.sessions.Deactivate(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	a.recordRevoked(ctx, "revoked", 1)
	return nil
}

// RevokeUser flags every active session of a user inactive.
func (a *Authenticator) RevokeUser(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := a.sessions.DeactivateByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}
	a.recordRevoked(ctx, "revoked", count)

	return count, nil
}

func (a *Authenticator) implicitLogout(ctx context.Context, w http.ResponseWriter, sessionID string) {
	a.deleteSession(ctx, sessionID, "invalid")
	a.clearCookie(w)
	a.recordBootstrap(ctx, "implicit_logout")
}

// deleteSession removes a session row, treating an already missing row as success.
func (a *Authenticator) deleteSession(ctx context.Context, sessionID, reason string) {
	err := a.sessions.Delete(ctx, sessionID)
	switch {
	case err == nil:
		a.recordRevoked(ctx, reason, 1)
	case errors.Is(err, store.ErrSessionNotFound):
	default:
		log.Error().Err(err).Str("reason", reason).Msg("Failed to delete session")
	}
}

func (a *Authenticator) setCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.Cookie.Name,
		Value:    sessionID,
		Path:     a.cfg.Cookie.Path,
		Domain:   a.cfg.Cookie.Domain,
		MaxAge:   int(a.cfg.CookieTTL.Seconds()),
		Expires:  time.Now().Add(a.cfg.CookieTTL),
		HttpOnly: true,
		Secure:   a.cfg.Cookie.Secure,
		SameSite: a.cfg.Cookie.SameSite,
	})
}

func (a *Authenticator) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.Cookie.Name,
		Value:    "",
		Path:     a.cfg.Cookie.Path,
		Domain:   a.cfg.Cookie.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   a.cfg.Cookie.Secure,
		SameSite: a.cfg.Cookie.SameSite,
	})
}

func (a *Authenticator) recordBootstrap(ctx context.Context, result string) {
	a.metrics.BootstrapTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (a *Authenticator) recordRevoked(ctx context.Context, reason string, count int) {
	if count == 0 {
		return
	}
	a.metrics.SessionsRevokedTotal.Add(ctx, int64(count), metric.WithAttributes(attribute.String("reason", reason)))
}

// clientIP prefers the address resolved by ClientIPMiddleware.
func clientIP(r *http.Request) string {
	if ip := httpmiddleware.ClientIPFromContext(r.Context()); ip != "" {
		return ip
	}
	return httpmiddleware.ExtractClientIP(r)
}
