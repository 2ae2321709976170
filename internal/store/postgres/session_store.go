package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/sessionauth/internal/models"
	"github.com/wolfeidau/sessionauth/internal/store"
)

// SessionStore implements store.SessionStore using PostgreSQL.
// Every time comparison uses the server's NOW().
type SessionStore struct {
	pool *pgxpool.Pool
}

// NewSessionStore creates a new PostgreSQL-backed session store.
func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{
		pool: pool,
	}
}

// Create inserts an active session expiring ttl after NOW().
func (s *SessionStore) Create(ctx context.Context, session *models.Session, ttl time.Duration) error {
	query := `
		INSERT INTO user_sessions (
			session_id, user_id, ip_address, user_agent,
			created_at, expires_at, is_active
		) VALUES (
			$1, $2, $3, $4, NOW(), NOW() + make_interval(secs => $5), TRUE
		)
		RETURNING created_at, expires_at, is_active
	`

	err := s.pool.QueryRow(ctx, query,
		session.SessionID,
		session.UserID,
		session.IPAddress,
		session.UserAgent,
		ttl.Seconds(),
	).Scan(&session.CreatedAt, &session.ExpiresAt, &session.Active)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("user_id", session.UserID.String()).
		Time("expires_at", session.ExpiresAt).
		Msg("Created session")

	return nil
}

// GetActive retrieves a session only if it is active and expires_at > NOW().
func (s *SessionStore) GetActive(ctx context.Context, sessionID string) (*models.Session, error) {
	query := `
		SELECT
			session_id, user_id, ip_address, user_agent,
			created_at, expires_at, is_active
		FROM user_sessions
		WHERE session_id = $1 AND is_active AND expires_at > NOW()
	`

	var session models.Session
	err := s.pool.QueryRow(ctx, query, sessionID).Scan(
		&session.SessionID,
		&session.UserID,
		&session.IPAddress,
		&session.UserAgent,
		&session.CreatedAt,
		&session.ExpiresAt,
		&session.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", mapPostgresError(err))
	}

	return &session, nil
}

// Delete deletes a session by ID (logout).
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM user_sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrSessionNotFound
	}

	log.Debug().Msg("Deleted session")

	return nil
}

// Deactivate flags a session inactive (revocation).
func (s *SessionStore) Deactivate(ctx context.Context, sessionID string) error {
	result, err := s.pool.Exec(ctx, `UPDATE user_sessions SET is_active = FALSE WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to deactivate session: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrSessionNotFound
	}

	return nil
}

// DeactivateByUser flags all active sessions for a user inactive (logout everywhere).
func (s *SessionStore) DeactivateByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	result, err := s.pool.Exec(ctx,
		`UPDATE user_sessions SET is_active = FALSE WHERE user_id = $1 AND is_active`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate sessions by user: %w", mapPostgresError(err))
	}

	count := int(result.RowsAffected())

	log.Debug().
		Str("user_id", userID.String()).
		Int("count", count).
		Msg("Deactivated sessions for user")

	return count, nil
}

// DeleteExpired deletes all expired or inactive sessions (cleanup job).
func (s *SessionStore) DeleteExpired(ctx context.Context) (int, error) {
	result, err := s.pool.Exec(ctx,
		`DELETE FROM user_sessions WHERE expires_at <= NOW() OR NOT is_active`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", mapPostgresError(err))
	}

	count := int(result.RowsAffected())

	if count > 0 {
		log.Info().Int("count", count).Msg("Deleted expired sessions")
	}

	return count, nil
}
