package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/sessionauth/internal/models"
	"github.com/wolfeidau/sessionauth/internal/store"
)

// SessionStore implements store.SessionStore using in-memory storage.
// This implementation is for testing and development - data is lost on restart.
type SessionStore struct {
	mu  sync.RWMutex
	now func() time.Time

	sessions       map[string]*models.Session // session_id -> Session
	sessionsByUser map[uuid.UUID][]string     // user_id -> []session_id
}

// SessionStoreOption configures a SessionStore.
type SessionStoreOption func(*SessionStore)

// WithClock sets the clock the store uses as its "now".
func WithClock(now func() time.Time) SessionStoreOption {
	return func(s *SessionStore) {
		s.now = now
	}
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore(opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{
		now:            time.Now,
		sessions:       make(map[string]*models.Session),
		sessionsByUser: make(map[uuid.UUID][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create creates a new active session in memory expiring ttl from now.
func (s *SessionStore) Create(ctx context.Context, session *models.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	session.CreatedAt = now
	session.ExpiresAt = now.Add(ttl)
	session.Active = true

	// Clone to avoid external modifications
	clone := *session
	s.sessions[session.SessionID] = &clone

	s.sessionsByUser[session.UserID] = append(s.sessionsByUser[session.UserID], session.SessionID)

	return nil
}

// GetActive retrieves a session if it is active and unexpired.
func (s *SessionStore) GetActive(ctx context.Context, sessionID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[sessionID]
	if !exists || !session.IsValidAt(s.now()) {
		return nil, store.ErrSessionNotFound
	}

	clone := *session
	return &clone, nil
}

// Delete deletes a session by ID (logout).
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return store.ErrSessionNotFound
	}

	s.removeFromUserIndex(session.UserID, sessionID)
	delete(s.sessions, sessionID)

	return nil
}

// Deactivate flags a session inactive.
func (s *SessionStore) Deactivate(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return store.ErrSessionNotFound
	}

	session.Active = false
	return nil
}

// DeactivateByUser flags all active sessions for a user inactive (logout everywhere).
func (s *SessionStore) DeactivateByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, sessionID := range s.sessionsByUser[userID] {
		if session := s.sessions[sessionID]; session.Active {
			session.Active = false
			count++
		}
	}

	return count, nil
}

// DeleteExpired deletes all expired or inactive sessions (cleanup job).
func (s *SessionStore) DeleteExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var toDelete []string
	now := s.now()

	for id, session := range s.sessions {
		if !session.IsValidAt(now) {
			toDelete = append(toDelete, id)
		}
	}

	for _, sessionID := range toDelete {
		session := s.sessions[sessionID]
		s.removeFromUserIndex(session.UserID, sessionID)
		delete(s.sessions, sessionID)
	}

	return len(toDelete), nil
}

// removeFromUserIndex removes a session ID from the user's session list.
func (s *SessionStore) removeFromUserIndex(userID uuid.UUID, sessionID string) {
	sessionIDs := s.sessionsByUser[userID]
	for i, id := range sessionIDs {
		if id == sessionID {
			s.sessionsByUser[userID] = append(sessionIDs[:i], sessionIDs[i+1:]...)
			break
		}
	}
	// Clean up empty entries
	if len(s.sessionsByUser[userID]) == 0 {
		delete(s.sessionsByUser, userID)
	}
}
