package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fanvault/user-service/internal/domain"
	"github.com/fanvault/user-service/internal/dto"
	"github.com/fanvault/user-service/internal/token"
)

type authTestEnv struct {
	auth     AuthService
	users    *mockUserRepository
	sessions *mockSessionRepository
	tokens   token.Service
}

func newAuthTestEnv(t *testing.T, cfg *AuthServiceConfig) *authTestEnv {
	t.Helper()

	if cfg == nil {
		cfg = &AuthServiceConfig{}
	}
	cfg.BcryptCost = bcrypt.MinCost

	users := newMockUserRepository()
	sessions := newMockSessionRepository()
	tokens := newTestTokenService(t)
	manager := NewSessionManager(sessions, tokens, &SessionManagerConfig{
		MaxConcurrentSessions: 3,
		SessionTTL:            time.Hour,
	})

	return &authTestEnv{
		auth:     NewAuthService(users, manager, tokens, NewNoOpEventPublisher(), cfg),
		users:    users,
		sessions: sessions,
		tokens:   tokens,
	}
}

func seedUser(t *testing.T, env *authTestEnv, username, password string, status domain.Status) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword() error = %v", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleSubscriber,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := env.users.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return user
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending subscriber", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)

		resp, err := env.auth.Register(ctx, &dto.RegisterRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "Str0ng!pass",
		})
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if resp.Role != string(domain.RoleSubscriber) {
			t.Errorf("role = %s, want %s", resp.Role, domain.RoleSubscriber)
		}
		if resp.Status != string(domain.StatusPendingVerification) {
			t.Errorf("status = %s, want %s", resp.Status, domain.StatusPendingVerification)
		}
		if resp.EmailVerified {
			t.Error("new account should not be email verified")
		}

		stored, _ := env.users.GetByID(ctx, resp.ID)
		if stored == nil {
			t.Fatal("user not persisted")
		}
		if stored.PasswordHash == "Str0ng!pass" {
			t.Error("password stored in plaintext")
		}
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)

		_, err := env.auth.Register(ctx, &dto.RegisterRequest{
			Username: "alice",
			Email:    "other@example.com",
			Password: "Str0ng!pass",
		})
		if !errors.Is(err, domain.ErrUserAlreadyExists) {
			t.Errorf("Register() error = %v, want ErrUserAlreadyExists", err)
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)

		_, err := env.auth.Register(ctx, &dto.RegisterRequest{
			Username: "bob",
			Email:    "alice@example.com",
			Password: "Str0ng!pass",
		})
		if !errors.Is(err, domain.ErrUserAlreadyExists) {
			t.Errorf("Register() error = %v, want ErrUserAlreadyExists", err)
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds with username", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		user := seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)

		resp, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}, "Mozilla/5.0", "10.0.0.1")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if resp.AccessToken == "" || resp.RefreshToken == "" {
			t.Fatal("expected both tokens")
		}

		claims, err := env.tokens.Verify(ctx, resp.AccessToken)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if claims.Subject != user.ID {
			t.Errorf("subject = %s, want %s", claims.Subject, user.ID)
		}
		if claims.Type != token.TypeAccess {
			t.Errorf("type = %s, want %s", claims.Type, token.TypeAccess)
		}

		stored, _ := env.users.GetByID(ctx, user.ID)
		if stored.Security.LastLogin == nil {
			t.Error("LastLogin not set")
		}
	})

	t.Run("succeeds with email", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)

		if _, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice@example.com", Password: "Str0ng!pass"}, "", ""); err != nil {
			t.Fatalf("Login() error = %v", err)
		}
	})

	t.Run("pending verification may log in", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		seedUser(t, env, "alice", "Str0ng!pass", domain.StatusPendingVerification)

		if _, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}, "", ""); err != nil {
			t.Fatalf("Login() error = %v", err)
		}
	})

	t.Run("unknown identifier", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)

		_, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "ghost", Password: "whatever1!"}, "", "")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("wrong password increments counter", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		user := seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)

		_, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "wrong"}, "", "")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
		}

		stored, _ := env.users.GetByID(ctx, user.ID)
		if stored.Security.FailedLoginAttempts != 1 {
			t.Errorf("FailedLoginAttempts = %d, want 1", stored.Security.FailedLoginAttempts)
		}
	})

	t.Run("suspended account refused", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		seedUser(t, env, "alice", "Str0ng!pass", domain.StatusSuspended)

		_, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}, "", "")
		if !errors.Is(err, domain.ErrAccountUnavailable) {
			t.Errorf("Login() error = %v, want ErrAccountUnavailable", err)
		}
	})

	t.Run("deleted account refused", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		seedUser(t, env, "alice", "Str0ng!pass", domain.StatusDeleted)

		_, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}, "", "")
		if !errors.Is(err, domain.ErrAccountUnavailable) {
			t.Errorf("Login() error = %v, want ErrAccountUnavailable", err)
		}
	})
}

func TestAuthService_Lockout(t *testing.T) {
	ctx := context.Background()
	env := newAuthTestEnv(t, &AuthServiceConfig{
		MaxLoginAttempts: 3,
		LockoutDuration:  50 * time.Millisecond,
	})
	user := seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)
	wrong := &dto.LoginRequest{Identifier: "alice", Password: "wrong"}
	right := &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}

	// Two failures stay below the threshold
	for i := 0; i < 2; i++ {
		_, err := env.auth.Login(ctx, wrong, "", "")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d error = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	// Third failure crosses it and reports the lock
	_, err := env.auth.Login(ctx, wrong, "", "")
	if !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("third attempt error = %v, want ErrAccountLocked", err)
	}
	var locked *domain.AccountLockedError
	if !errors.As(err, &locked) {
		t.Fatal("expected AccountLockedError")
	}
	if !locked.Until.After(time.Now().Add(-time.Second)) {
		t.Errorf("lockout until %v is not in the future", locked.Until)
	}

	// The correct password is refused while locked
	if _, err := env.auth.Login(ctx, right, "", ""); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("locked login error = %v, want ErrAccountLocked", err)
	}

	// After the window passes, login succeeds and the counter resets
	time.Sleep(80 * time.Millisecond)
	if _, err := env.auth.Login(ctx, right, "", ""); err != nil {
		t.Fatalf("post-lockout login error = %v", err)
	}

	stored, _ := env.users.GetByID(ctx, user.ID)
	if stored.Security.FailedLoginAttempts != 0 {
		t.Errorf("FailedLoginAttempts = %d, want 0", stored.Security.FailedLoginAttempts)
	}
	if stored.Security.LockoutUntil != nil {
		t.Errorf("LockoutUntil = %v, want nil", stored.Security.LockoutUntil)
	}
}

func TestAuthService_ConcurrentSessionEviction(t *testing.T) {
	ctx := context.Background()

	users := newMockUserRepository()
	sessions := newMockSessionRepository()
	tokens := newTestTokenService(t)
	manager := NewSessionManager(sessions, tokens, &SessionManagerConfig{
		MaxConcurrentSessions: 2,
		SessionTTL:            time.Hour,
	})
	auth := NewAuthService(users, manager, tokens, nil, &AuthServiceConfig{BcryptCost: bcrypt.MinCost})
	env := &authTestEnv{auth: auth, users: users, sessions: sessions, tokens: tokens}

	user := seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)
	req := &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}

	first, err := auth.Login(ctx, req, "", "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, err := auth.Login(ctx, req, "", ""); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, err := auth.Login(ctx, req, "", ""); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	active, _ := manager.ActiveSessions(ctx, user.ID)
	if len(active) != 2 {
		t.Fatalf("active sessions = %d, want 2", len(active))
	}

	// The evicted session's tokens no longer verify
	if tokens.IsValid(ctx, first.AccessToken) {
		t.Error("evicted access token should be revoked")
	}
	if _, err := tokens.Verify(ctx, first.RefreshToken); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Errorf("evicted refresh token error = %v, want ErrTokenRevoked", err)
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("issues new access token only", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)

		login, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}, "", "")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		refreshed, err := env.auth.RefreshToken(ctx, login.RefreshToken)
		if err != nil {
			t.Fatalf("RefreshToken() error = %v", err)
		}
		if refreshed.RefreshToken != login.RefreshToken {
			t.Error("refresh token should not rotate")
		}
		if _, err := env.tokens.Verify(ctx, refreshed.AccessToken); err != nil {
			t.Errorf("new access token Verify() error = %v", err)
		}

		// The session tracks the newest access token
		session, _ := env.sessions.GetBySessionToken(ctx, login.RefreshToken)
		if session.AccessToken != refreshed.AccessToken {
			t.Error("session access token not updated")
		}
	})

	t.Run("rejects access token", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)

		login, _ := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}, "", "")
		_, err := env.auth.RefreshToken(ctx, login.AccessToken)
		if !errors.Is(err, domain.ErrTokenInvalid) {
			t.Errorf("RefreshToken() error = %v, want ErrTokenInvalid", err)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)

		_, err := env.auth.RefreshToken(ctx, "not-a-token")
		if !errors.Is(err, domain.ErrTokenInvalid) {
			t.Errorf("RefreshToken() error = %v, want ErrTokenInvalid", err)
		}
	})

	t.Run("fails after logout", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)

		login, _ := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}, "", "")
		if err := env.auth.Logout(ctx, login.RefreshToken); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}

		// Logout revokes the refresh token, so verification fails
		// before the session lookup would
		_, err := env.auth.RefreshToken(ctx, login.RefreshToken)
		if !errors.Is(err, domain.ErrTokenRevoked) {
			t.Errorf("RefreshToken() error = %v, want ErrTokenRevoked", err)
		}
	})

	t.Run("fails for suspended user", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		user := seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)

		login, _ := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}, "", "")
		user.Status = domain.StatusSuspended

		_, err := env.auth.RefreshToken(ctx, login.RefreshToken)
		if !errors.Is(err, domain.ErrAccountUnavailable) {
			t.Errorf("RefreshToken() error = %v, want ErrAccountUnavailable", err)
		}
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("by refresh token", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		user := seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)

		login, _ := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}, "", "")
		if err := env.auth.Logout(ctx, login.RefreshToken); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}

		active, _ := env.sessions.GetActiveByUserID(ctx, user.ID)
		if len(active) != 0 {
			t.Errorf("active sessions = %d, want 0", len(active))
		}
		if env.tokens.IsValid(ctx, login.AccessToken) {
			t.Error("access token should be revoked")
		}
	})

	t.Run("by access token", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		user := seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)

		login, _ := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}, "", "")
		if err := env.auth.Logout(ctx, login.AccessToken); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}

		active, _ := env.sessions.GetActiveByUserID(ctx, user.ID)
		if len(active) != 0 {
			t.Errorf("active sessions = %d, want 0", len(active))
		}
	})

	t.Run("unknown token is a no-op", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)

		if err := env.auth.Logout(ctx, "unknown-token"); err != nil {
			t.Errorf("Logout() error = %v, want nil", err)
		}
	})

	t.Run("double logout is a no-op", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)

		login, _ := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}, "", "")
		if err := env.auth.Logout(ctx, login.RefreshToken); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		if err := env.auth.Logout(ctx, login.RefreshToken); err != nil {
			t.Errorf("second Logout() error = %v, want nil", err)
		}
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	ctx := context.Background()
	env := newAuthTestEnv(t, nil)
	user := seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)

	login, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}, "", "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	claims, err := env.auth.ValidateToken(ctx, login.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Subject != user.ID || claims.Username != "alice" {
		t.Errorf("claims = {%s %s}, want {%s alice}", claims.Subject, claims.Username, user.ID)
	}

	// Refresh tokens are not identity proof
	if _, err := env.auth.ValidateToken(ctx, login.RefreshToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("ValidateToken(refresh) error = %v, want ErrTokenInvalid", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong current password", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		user := seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)

		err := env.auth.ChangePassword(ctx, user.ID, "wrong", "N3w!password")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("ChangePassword() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("rotates password and kills sessions", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		user := seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)

		login, _ := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}, "", "")

		if err := env.auth.ChangePassword(ctx, user.ID, "Str0ng!pass", "N3w!password"); err != nil {
			t.Fatalf("ChangePassword() error = %v", err)
		}

		active, _ := env.sessions.GetActiveByUserID(ctx, user.ID)
		if len(active) != 0 {
			t.Errorf("active sessions = %d, want 0", len(active))
		}
		if env.tokens.IsValid(ctx, login.AccessToken) {
			t.Error("old access token should be revoked")
		}

		if _, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}, "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("old password login error = %v, want ErrInvalidCredentials", err)
		}
		if _, err := env.auth.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "N3w!password"}, "", ""); err != nil {
			t.Errorf("new password login error = %v", err)
		}
	})
}

func TestAuthService_VerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("activates pending account", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		user := seedUser(t, env, "alice", "Str0ng!pass", domain.StatusPendingVerification)

		if err := env.auth.VerifyEmail(ctx, user.ID); err != nil {
			t.Fatalf("VerifyEmail() error = %v", err)
		}

		stored, _ := env.users.GetByID(ctx, user.ID)
		if !stored.EmailVerified {
			t.Error("EmailVerified = false, want true")
		}
		if stored.Status != domain.StatusActive {
			t.Errorf("status = %s, want %s", stored.Status, domain.StatusActive)
		}
	})

	t.Run("keeps suspended status", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)
		user := seedUser(t, env, "alice", "Str0ng!pass", domain.StatusSuspended)

		if err := env.auth.VerifyEmail(ctx, user.ID); err != nil {
			t.Fatalf("VerifyEmail() error = %v", err)
		}

		stored, _ := env.users.GetByID(ctx, user.ID)
		if stored.Status != domain.StatusSuspended {
			t.Errorf("status = %s, want %s", stored.Status, domain.StatusSuspended)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		env := newAuthTestEnv(t, nil)

		if err := env.auth.VerifyEmail(ctx, "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
			t.Errorf("VerifyEmail() error = %v, want ErrUserNotFound", err)
		}
	})
}

func TestAuthService_AccountLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newAuthTestEnv(t, nil)
	user := seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)
	req := &dto.LoginRequest{Identifier: "alice", Password: "Str0ng!pass"}

	if _, err := env.auth.Login(ctx, req, "", ""); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := env.auth.DeactivateAccount(ctx, user.ID); err != nil {
		t.Fatalf("DeactivateAccount() error = %v", err)
	}
	active, _ := env.sessions.GetActiveByUserID(ctx, user.ID)
	if len(active) != 0 {
		t.Errorf("active sessions after deactivate = %d, want 0", len(active))
	}
	if _, err := env.auth.Login(ctx, req, "", ""); !errors.Is(err, domain.ErrAccountUnavailable) {
		t.Fatalf("suspended login error = %v, want ErrAccountUnavailable", err)
	}

	if err := env.auth.ReactivateAccount(ctx, user.ID); err != nil {
		t.Fatalf("ReactivateAccount() error = %v", err)
	}
	if _, err := env.auth.Login(ctx, req, "", ""); err != nil {
		t.Fatalf("reactivated login error = %v", err)
	}

	if err := env.auth.DeleteAccount(ctx, user.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if _, err := env.auth.Login(ctx, req, "", ""); !errors.Is(err, domain.ErrAccountUnavailable) {
		t.Fatalf("deleted login error = %v, want ErrAccountUnavailable", err)
	}
	if err := env.auth.ReactivateAccount(ctx, user.ID); !errors.Is(err, domain.ErrAccountUnavailable) {
		t.Errorf("reactivate deleted error = %v, want ErrAccountUnavailable", err)
	}
}

func TestAuthService_GetUser(t *testing.T) {
	ctx := context.Background()
	env := newAuthTestEnv(t, nil)
	user := seedUser(t, env, "alice", "Str0ng!pass", domain.StatusActive)

	got, err := env.auth.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("ID = %s, want %s", got.ID, user.ID)
	}

	if _, err := env.auth.GetUser(ctx, "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("GetUser() error = %v, want ErrUserNotFound", err)
	}
}
