package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fanvault/user-service/internal/domain"
	"github.com/fanvault/user-service/internal/repository"
	"github.com/fanvault/user-service/internal/token"
	"github.com/fanvault/user-service/pkg/logger"
)

// SessionManagerConfig holds configuration for the SessionManager
type SessionManagerConfig struct {
	MaxConcurrentSessions int
	SessionTTL            time.Duration
}

// SessionManager enforces the maximum-concurrent-sessions invariant and
// owns session lifecycle transitions. A session only ever goes from
// active to inactive; there is no resurrection.
type SessionManager struct {
	sessions repository.SessionRepository
	tokens   token.Service
	config   *SessionManagerConfig
	log      *logger.Logger
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(
	sessions repository.SessionRepository,
	tokens token.Service,
	config *SessionManagerConfig,
) *SessionManager {
	if config.MaxConcurrentSessions == 0 {
		config.MaxConcurrentSessions = 3
	}
	if config.SessionTTL == 0 {
		config.SessionTTL = 7 * 24 * time.Hour
	}
	return &SessionManager{
		sessions: sessions,
		tokens:   tokens,
		config:   config,
		log:      logger.Get(),
	}
}

// EnforceConcurrencyLimit evicts the oldest active sessions until one
// slot remains free for a new session. The repository returns sessions
// oldest first, so eviction takes a prefix; ties keep arrival order.
func (m *SessionManager) EnforceConcurrencyLimit(ctx context.Context, userID string) error {
	active, err := m.sessions.GetActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}

	max := m.config.MaxConcurrentSessions
	if len(active) < max {
		return nil
	}

	evict := len(active) - max + 1
	for _, session := range active[:evict] {
		if err := m.TerminateSession(ctx, session); err != nil {
			return err
		}
		m.log.Info(fmt.Sprintf("Evicted session %s for user %s (concurrency limit %d)", session.ID, userID, max))
	}
	return nil
}

// NewSessionID returns a fresh session identifier. The caller embeds it
// in token claims before the session row exists, so the ID is minted
// here rather than in CreateSession.
func (m *SessionManager) NewSessionID() string {
	return uuid.New().String()
}

// CreateSession persists a new active session binding the user, device
// and token pair. Must be called after EnforceConcurrencyLimit. The
// insert is idempotent on the session ID, so a retried login that
// already wrote the row succeeds without duplicating it.
func (m *SessionManager) CreateSession(ctx context.Context, sessionID, userID, accessToken, refreshToken string, device domain.DeviceInfo) (*domain.Session, error) {
	now := time.Now()
	session := &domain.Session{
		ID:           sessionID,
		UserID:       userID,
		SessionToken: refreshToken,
		AccessToken:  accessToken,
		DeviceInfo:   device,
		IsActive:     true,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.config.SessionTTL),
		LastActivity: now,
	}

	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// TerminateSession marks a session inactive and revokes both of its
// tokens. Terminating an already-inactive session is a no-op.
func (m *SessionManager) TerminateSession(ctx context.Context, session *domain.Session) error {
	if !session.IsActive {
		return nil
	}

	session.IsActive = false
	session.Touch()
	if err := m.sessions.Update(ctx, session); err != nil {
		return err
	}

	m.tokens.Revoke(ctx, session.SessionToken)
	m.tokens.Revoke(ctx, session.AccessToken)
	return nil
}

// TerminateAllSessions terminates every active session for the user.
// Used on logout-all, password change and account deactivation.
func (m *SessionManager) TerminateAllSessions(ctx context.Context, userID string) error {
	active, err := m.sessions.GetActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}

	for _, session := range active {
		if err := m.TerminateSession(ctx, session); err != nil {
			return err
		}
	}
	return nil
}

// PurgeSessions removes every session row for the user. Callers must
// terminate the sessions first so their tokens have been revoked;
// deletion alone does not touch the revocation list.
func (m *SessionManager) PurgeSessions(ctx context.Context, userID string) error {
	return m.sessions.DeleteByUserID(ctx, userID)
}

// ActiveSessions lists the user's active sessions, oldest first.
func (m *SessionManager) ActiveSessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	return m.sessions.GetActiveByUserID(ctx, userID)
}
