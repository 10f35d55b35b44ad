package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fanvault/user-service/internal/domain"
)

const userColumns = `id, username, email, display_name, password_hash, role, status,
		email_verified, creator_profile, failed_login_attempts, lockout_until, last_login,
		security_events, created_at, updated_at, last_active_at`

// PostgresUserRepository implements UserRepository using PostgreSQL
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create creates a new user
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, display_name, password_hash, role, status,
			email_verified, creator_profile, failed_login_attempts, lockout_until, last_login,
			security_events, created_at, updated_at, last_active_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.EmailVerified,
		user.Creator,
		user.Security.FailedLoginAttempts,
		user.Security.LockoutUntil,
		user.Security.LastLogin,
		user.Security.Events,
		user.CreatedAt,
		user.UpdatedAt,
		user.LastActiveAt,
	)
	return err
}

func scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.EmailVerified,
		&user.Creator,
		&user.Security.FailedLoginAttempts,
		&user.Security.LockoutUntil,
		&user.Security.LastLogin,
		&user.Security.Events,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastActiveAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetByIdentifier retrieves a user by username or email
func (r *PostgresUserRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, identifier))
}

// Update updates a user
func (r *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, display_name = $4, password_hash = $5, role = $6,
			status = $7, email_verified = $8, creator_profile = $9, failed_login_attempts = $10,
			lockout_until = $11, last_login = $12, security_events = $13,
			updated_at = $14, last_active_at = $15
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.EmailVerified,
		user.Creator,
		user.Security.FailedLoginAttempts,
		user.Security.LockoutUntil,
		user.Security.LastLogin,
		user.Security.Events,
		user.UpdatedAt,
		user.LastActiveAt,
	)
	return err
}

// RecordLoginFailure increments the failed-attempt counter and opens the
// lockout window in one statement, mirroring the lockout policy's failure
// transition. The single UPDATE gives atomic increment semantics under
// concurrent login attempts for the same user.
func (r *PostgresUserRepository) RecordLoginFailure(ctx context.Context, userID string, maxAttempts int, lockoutDuration time.Duration) (*domain.SecurityState, error) {
	query := `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
			lockout_until = CASE
				WHEN failed_login_attempts + 1 >= $2
				THEN NOW() + make_interval(secs => $3)
				ELSE lockout_until
			END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING failed_login_attempts, lockout_until, last_login
	`
	state := &domain.SecurityState{}
	err := r.pool.QueryRow(ctx, query, userID, maxAttempts, lockoutDuration.Seconds()).Scan(
		&state.FailedLoginAttempts,
		&state.LockoutUntil,
		&state.LastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return state, nil
}

// AppendSecurityEvent appends one audit event to the user's security log.
// The jsonb concat keeps concurrent appends from clobbering each other.
func (r *PostgresUserRepository) AppendSecurityEvent(ctx context.Context, userID string, event domain.SecurityEvent) error {
	payload, err := json.Marshal([]domain.SecurityEvent{event})
	if err != nil {
		return err
	}
	query := `
		UPDATE users
		SET security_events = COALESCE(security_events, '[]'::jsonb) || $2::jsonb,
			updated_at = NOW()
		WHERE id = $1
	`
	_, err = r.pool.Exec(ctx, query, userID, payload)
	return err
}

// ExistsByUsername checks if a user exists with the given username
func (r *PostgresUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

// ExistsByEmail checks if a user exists with the given email
func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}
