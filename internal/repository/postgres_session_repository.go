package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fanvault/user-service/internal/domain"
)

const sessionColumns = `id, user_id, session_token, access_token, device_info,
		is_active, created_at, expires_at, last_activity`

// PostgresSessionRepository implements SessionRepository using PostgreSQL
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionRepository creates a new PostgresSessionRepository
func NewPostgresSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// Create creates a new session. Inserts are keyed by session id with
// ON CONFLICT DO NOTHING so a retried login flow cannot double-create.
func (r *PostgresSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, session_token, access_token, device_info,
			is_active, created_at, expires_at, last_activity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.SessionToken,
		session.AccessToken,
		session.DeviceInfo,
		session.IsActive,
		session.CreatedAt,
		session.ExpiresAt,
		session.LastActivity,
	)
	return err
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	session := &domain.Session{}
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.SessionToken,
		&session.AccessToken,
		&session.DeviceInfo,
		&session.IsActive,
		&session.CreatedAt,
		&session.ExpiresAt,
		&session.LastActivity,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

// GetByID retrieves a session by ID
func (r *PostgresSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return scanSession(r.pool.QueryRow(ctx, query, id))
}

// GetBySessionToken retrieves a session by its refresh token
func (r *PostgresSessionRepository) GetBySessionToken(ctx context.Context, token string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE session_token = $1`
	return scanSession(r.pool.QueryRow(ctx, query, token))
}

// GetByAccessToken retrieves a session by its stored access token
func (r *PostgresSessionRepository) GetByAccessToken(ctx context.Context, token string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE access_token = $1`
	return scanSession(r.pool.QueryRow(ctx, query, token))
}

// GetActiveByUserID retrieves all active, unexpired sessions for a user,
// oldest first so eviction can take a prefix.
func (r *PostgresSessionRepository) GetActiveByUserID(ctx context.Context, userID string) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1 AND is_active = TRUE AND expires_at > NOW()
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session := &domain.Session{}
		err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.SessionToken,
			&session.AccessToken,
			&session.DeviceInfo,
			&session.IsActive,
			&session.CreatedAt,
			&session.ExpiresAt,
			&session.LastActivity,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// Update persists session state changes
func (r *PostgresSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	query := `
		UPDATE sessions
		SET session_token = $2, access_token = $3, is_active = $4, last_activity = $5
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.SessionToken,
		session.AccessToken,
		session.IsActive,
		session.LastActivity,
	)
	return err
}

// DeleteByUserID deletes all sessions for a user
func (r *PostgresSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	query := `DELETE FROM sessions WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

// DeleteExpired deletes all expired sessions
func (r *PostgresSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < NOW()`
	tag, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
