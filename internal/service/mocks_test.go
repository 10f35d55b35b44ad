package service

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/fanvault/user-service/internal/domain"
	"github.com/fanvault/user-service/internal/security"
	"github.com/fanvault/user-service/internal/token"
	"github.com/fanvault/user-service/pkg/redis"
)

// mockUserRepository is a map-backed implementation of UserRepository.
// RecordLoginFailure applies the lockout policy transition directly,
// matching the single-statement semantics of the SQL implementation.
type mockUserRepository struct {
	users       map[string]*domain.User
	createError error
	updateError error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (r *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if r.createError != nil {
		return r.createError
	}
	r.users[user.ID] = user
	return nil
}

func (r *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.users[id], nil
}

func (r *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (r *mockUserRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == identifier || user.Email == identifier {
			return user, nil
		}
	}
	return nil, nil
}

func (r *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if r.updateError != nil {
		return r.updateError
	}
	r.users[user.ID] = user
	return nil
}

func (r *mockUserRepository) RecordLoginFailure(ctx context.Context, userID string, maxAttempts int, lockoutDuration time.Duration) (*domain.SecurityState, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	policy := security.LockoutPolicy{MaxAttempts: maxAttempts, LockoutDuration: lockoutDuration}
	user.Security = policy.OnFailure(user.Security, time.Now())
	state := user.Security
	return &state, nil
}

func (r *mockUserRepository) AppendSecurityEvent(ctx context.Context, userID string, event domain.SecurityEvent) error {
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Security.Events = append(user.Security.Events, event)
	return nil
}

func (r *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, user := range r.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// mockSessionRepository is a map-backed implementation of
// SessionRepository. The order slice preserves creation order so
// GetActiveByUserID returns oldest first, like the SQL ORDER BY.
type mockSessionRepository struct {
	sessions map[string]*domain.Session
	order    []string
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{
		sessions: make(map[string]*domain.Session),
	}
}

func (r *mockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if _, exists := r.sessions[session.ID]; exists {
		return nil
	}
	r.sessions[session.ID] = session
	r.order = append(r.order, session.ID)
	return nil
}

func (r *mockSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	return r.sessions[id], nil
}

func (r *mockSessionRepository) GetBySessionToken(ctx context.Context, token string) (*domain.Session, error) {
	for _, id := range r.order {
		if r.sessions[id] != nil && r.sessions[id].SessionToken == token {
			return r.sessions[id], nil
		}
	}
	return nil, nil
}

func (r *mockSessionRepository) GetByAccessToken(ctx context.Context, token string) (*domain.Session, error) {
	for _, id := range r.order {
		if r.sessions[id] != nil && r.sessions[id].AccessToken == token {
			return r.sessions[id], nil
		}
	}
	return nil, nil
}

func (r *mockSessionRepository) GetActiveByUserID(ctx context.Context, userID string) ([]*domain.Session, error) {
	var active []*domain.Session
	for _, id := range r.order {
		session := r.sessions[id]
		if session != nil && session.UserID == userID && session.IsActive && !session.IsExpired() {
			active = append(active, session)
		}
	}
	return active, nil
}

func (r *mockSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	r.sessions[session.ID] = session
	return nil
}

func (r *mockSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	for id, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *mockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	var count int64
	for id, session := range r.sessions {
		if session.IsExpired() {
			delete(r.sessions, id)
			count++
		}
	}
	return count, nil
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error = %v", err)
	}
	t.Cleanup(mr.Close)

	host, portStr, err := net.SplitHostPort(mr.Addr())
	if err != nil {
		t.Fatalf("SplitHostPort() error = %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	client, err := redis.NewClient(context.Background(), &redis.Config{
		Host:          host,
		Port:          port,
		DialTimeout:   time.Second,
		ReadTimeout:   time.Second,
		WriteTimeout:  time.Second,
		MaxRetries:    1,
		RetryInterval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("redis.NewClient() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return client
}

func newTestTokenService(t *testing.T) token.Service {
	t.Helper()

	revocation := token.NewRevocationList(context.Background(), newTestRedis(t))
	return token.NewService(&token.Config{
		Secret:          "test-secret-key",
		Issuer:          "user-service",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}, revocation)
}
