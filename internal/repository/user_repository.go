package repository

import (
	"context"
	"time"

	"github.com/fanvault/user-service/internal/domain"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *domain.User) error
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByIdentifier retrieves a user by username or email
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	// Update updates a user
	Update(ctx context.Context, user *domain.User) error
	// RecordLoginFailure applies the lockout failure transition as a single
	// atomic statement at the store and returns the resulting state, so
	// concurrent failed logins cannot under-count attempts
	RecordLoginFailure(ctx context.Context, userID string, maxAttempts int, lockoutDuration time.Duration) (*domain.SecurityState, error)
	// AppendSecurityEvent appends one audit event without rewriting the
	// rest of the security state
	AppendSecurityEvent(ctx context.Context, userID string, event domain.SecurityEvent) error
	// ExistsByUsername checks if a user exists with the given username
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ExistsByEmail checks if a user exists with the given email
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// SessionRepository defines the interface for session data access
type SessionRepository interface {
	// Create creates a new session; retries keyed by session id are no-ops
	Create(ctx context.Context, session *domain.Session) error
	// GetByID retrieves a session by ID
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// GetBySessionToken retrieves a session by its refresh token
	GetBySessionToken(ctx context.Context, token string) (*domain.Session, error)
	// GetByAccessToken retrieves a session by its stored access token
	GetByAccessToken(ctx context.Context, token string) (*domain.Session, error)
	// GetActiveByUserID retrieves all active sessions for a user, oldest first
	GetActiveByUserID(ctx context.Context, userID string) ([]*domain.Session, error)
	// Update persists session state changes (deactivation, token rotation, activity)
	Update(ctx context.Context, session *domain.Session) error
	// DeleteByUserID deletes all sessions for a user
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired deletes all expired sessions and reports how many
	DeleteExpired(ctx context.Context) (int64, error)
}
