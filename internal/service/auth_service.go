package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fanvault/user-service/internal/domain"
	"github.com/fanvault/user-service/internal/dto"
	"github.com/fanvault/user-service/internal/repository"
	"github.com/fanvault/user-service/internal/security"
	"github.com/fanvault/user-service/internal/token"
	"github.com/fanvault/user-service/pkg/logger"
)

// AuthServiceConfig holds configuration for AuthService
type AuthServiceConfig struct {
	BcryptCost       int
	MaxLoginAttempts int
	LockoutDuration  time.Duration
	AccessTokenTTL   time.Duration
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Register creates a new subscriber account pending email verification
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	// Login authenticates a user by username or email
	Login(ctx context.Context, req *dto.LoginRequest, userAgent, ip string) (*dto.AuthResponse, error)
	// RefreshToken exchanges a refresh token for a new access token
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	// Logout terminates the session bound to the given token
	Logout(ctx context.Context, tokenString string) error
	// LogoutAll terminates all sessions for a user
	LogoutAll(ctx context.Context, userID string) error
	// ValidateToken validates an access token and returns its claims
	ValidateToken(ctx context.Context, tokenString string) (*token.Claims, error)
	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, id string) (*domain.User, error)
	// GetSessions lists a user's active sessions, oldest first
	GetSessions(ctx context.Context, userID string) ([]*domain.Session, error)
	// VerifyEmail marks the user's email verified and activates pending accounts
	VerifyEmail(ctx context.Context, userID string) error
	// ChangePassword rotates the password and terminates all sessions
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	// DeactivateAccount suspends the account and terminates all sessions
	DeactivateAccount(ctx context.Context, userID string) error
	// ReactivateAccount restores a suspended account
	ReactivateAccount(ctx context.Context, userID string) error
	// DeleteAccount soft-deletes the account and terminates all sessions
	DeleteAccount(ctx context.Context, userID string) error
}

// authService implements AuthService
type authService struct {
	userRepo repository.UserRepository
	sessions *SessionManager
	tokens   token.Service
	events   EventPublisher
	policy   security.LockoutPolicy
	config   *AuthServiceConfig
	log      *logger.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	sessions *SessionManager,
	tokens token.Service,
	events EventPublisher,
	config *AuthServiceConfig,
) AuthService {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.MaxLoginAttempts == 0 {
		config.MaxLoginAttempts = 5
	}
	if config.LockoutDuration == 0 {
		config.LockoutDuration = 15 * time.Minute
	}
	if config.AccessTokenTTL == 0 {
		config.AccessTokenTTL = 15 * time.Minute
	}
	if events == nil {
		events = NewNoOpEventPublisher()
	}
	return &authService{
		userRepo: userRepo,
		sessions: sessions,
		tokens:   tokens,
		events:   events,
		policy: security.LockoutPolicy{
			MaxAttempts:     config.MaxLoginAttempts,
			LockoutDuration: config.LockoutDuration,
		},
		config: config,
		log:    logger.Get(),
	}
}

// Register creates a new subscriber account. The account starts in
// PENDING_VERIFICATION; verification email delivery is driven by the
// published user.registered event.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleSubscriber,
		Status:       domain.StatusPendingVerification,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, func(ctx context.Context) error {
		return s.events.PublishUserRegistered(ctx, user)
	})

	resp := toUserResponse(user)
	return &resp, nil
}

// Login authenticates a user by username or email. The lockout check
// runs before the password compare, so a locked account reports
// AccountLocked even for a correct password. Pending-verification
// accounts may log in; only suspended and deleted accounts are refused.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, userAgent, ip string) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	if user.Security.IsLocked() {
		return nil, &domain.AccountLockedError{Until: *user.Security.LockoutUntil}
	}

	if !user.IsAvailable() {
		return nil, domain.ErrAccountUnavailable
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, s.recordLoginFailure(ctx, user, userAgent, ip)
	}

	now := time.Now()
	user.Security = s.policy.OnSuccess(user.Security, now)
	user.Security.AppendEvent(domain.EventLoginSuccess, "Successful login", ip, userAgent)
	user.LastActiveAt = &now
	user.UpdatedAt = now

	if err := s.sessions.EnforceConcurrencyLimit(ctx, user.ID); err != nil {
		return nil, err
	}

	sessionID := s.sessions.NewSessionID()
	accessToken, err := s.tokens.IssueAccessToken(user, sessionID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user, sessionID)
	if err != nil {
		return nil, err
	}

	// Security state first, session second. The session insert is
	// idempotent on its id, so a crash between the two writes can be
	// retried without creating a duplicate session.
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	device := domain.ParseDeviceInfo(userAgent, ip)
	if _, err := s.sessions.CreateSession(ctx, sessionID, user.ID, accessToken, refreshToken, device); err != nil {
		return nil, err
	}

	s.publish(ctx, func(ctx context.Context) error {
		return s.events.PublishUserLoggedIn(ctx, user, device)
	})

	return s.authResponse(user, accessToken, refreshToken), nil
}

// recordLoginFailure persists the failure transition and returns the
// error the caller should surface. Internal persistence errors are
// logged, not leaked, so an attacker cannot distinguish store trouble
// from a wrong password. The attempt that crosses the threshold
// reports AccountLocked itself.
func (s *authService) recordLoginFailure(ctx context.Context, user *domain.User, userAgent, ip string) error {
	state, err := s.userRepo.RecordLoginFailure(ctx, user.ID, s.policy.MaxAttempts, s.policy.LockoutDuration)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to record login failure for user %s: %v", user.ID, err))
		return domain.ErrInvalidCredentials
	}

	if err := s.userRepo.AppendSecurityEvent(ctx, user.ID, domain.SecurityEvent{
		Type:        domain.EventLoginFailed,
		Description: fmt.Sprintf("Failed login attempt %d", state.FailedLoginAttempts),
		IPAddress:   ip,
		UserAgent:   userAgent,
		Timestamp:   time.Now(),
	}); err != nil {
		s.log.Warn(fmt.Sprintf("Failed to append security event for user %s: %v", user.ID, err))
	}

	if state.IsLocked() {
		if err := s.userRepo.AppendSecurityEvent(ctx, user.ID, domain.SecurityEvent{
			Type:        domain.EventAccountLocked,
			Description: fmt.Sprintf("Account locked after %d failed attempts", state.FailedLoginAttempts),
			IPAddress:   ip,
			UserAgent:   userAgent,
			Timestamp:   time.Now(),
		}); err != nil {
			s.log.Warn(fmt.Sprintf("Failed to append security event for user %s: %v", user.ID, err))
		}

		user.Security = *state
		device := domain.ParseDeviceInfo(userAgent, ip)
		s.publish(ctx, func(ctx context.Context) error {
			return s.events.PublishAccountLocked(ctx, user, device)
		})

		s.log.Warn(fmt.Sprintf("Account %s locked until %s after %d failed attempts",
			user.ID, state.LockoutUntil.Format(time.RFC3339), state.FailedLoginAttempts))
		return &domain.AccountLockedError{Until: *state.LockoutUntil}
	}

	return domain.ErrInvalidCredentials
}

// RefreshToken exchanges a valid refresh token for a new access token.
// The refresh token itself is not rotated; the session keeps its
// original expiry.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	claims, err := s.tokens.Verify(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != token.TypeRefresh {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if !user.IsAvailable() {
		return nil, domain.ErrAccountUnavailable
	}

	session, err := s.sessions.sessions.GetBySessionToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if session == nil || !session.IsActive {
		return nil, domain.ErrSessionNotFound
	}
	if session.IsExpired() {
		if err := s.sessions.TerminateSession(ctx, session); err != nil {
			s.log.Warn(fmt.Sprintf("Failed to terminate expired session %s: %v", session.ID, err))
		}
		return nil, domain.ErrSessionNotFound
	}

	accessToken, err := s.tokens.IssueAccessToken(user, session.ID)
	if err != nil {
		return nil, err
	}

	session.AccessToken = accessToken
	session.Touch()
	if err := s.sessions.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	return s.authResponse(user, accessToken, refreshToken), nil
}

// Logout terminates the session bound to the given token. The token may
// be either the refresh token or the access token. Logging out an
// unknown token is a no-op.
func (s *authService) Logout(ctx context.Context, tokenString string) error {
	session, err := s.sessions.sessions.GetBySessionToken(ctx, tokenString)
	if err != nil {
		return err
	}
	if session == nil {
		session, err = s.sessions.sessions.GetByAccessToken(ctx, tokenString)
		if err != nil {
			return err
		}
	}
	if session == nil {
		return nil
	}

	return s.sessions.TerminateSession(ctx, session)
}

// LogoutAll terminates all sessions for a user
func (s *authService) LogoutAll(ctx context.Context, userID string) error {
	return s.sessions.TerminateAllSessions(ctx, userID)
}

// ValidateToken validates an access token and returns its claims.
// Refresh tokens are not accepted as proof of identity.
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*token.Claims, error) {
	claims, err := s.tokens.Verify(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != token.TypeAccess {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// GetUser retrieves a user by ID
func (s *authService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// GetSessions lists a user's active sessions, oldest first.
func (s *authService) GetSessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	return s.sessions.ActiveSessions(ctx, userID)
}

// VerifyEmail marks the user's email verified. A pending account becomes
// active; already-active accounts keep their status.
func (s *authService) VerifyEmail(ctx context.Context, userID string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	user.EmailVerified = true
	if user.Status == domain.StatusPendingVerification {
		user.Status = domain.StatusActive
	}
	user.Security.AppendEvent(domain.EventEmailVerified, "Email address verified", "", "")
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.publish(ctx, func(ctx context.Context) error {
		return s.events.PublishAccountStatusChanged(ctx, domain.UserEventEmailVerified, user)
	})
	return nil
}

// ChangePassword rotates the password after verifying the current one.
// All sessions are terminated so stolen tokens die with the old
// password.
func (s *authService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.BcryptCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashedPassword)
	user.Security.AppendEvent(domain.EventPasswordChanged, "Password changed", "", "")
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if err := s.sessions.TerminateAllSessions(ctx, user.ID); err != nil {
		return err
	}

	s.publish(ctx, func(ctx context.Context) error {
		return s.events.PublishPasswordChanged(ctx, user)
	})
	return nil
}

// DeactivateAccount suspends the account and terminates all sessions.
func (s *authService) DeactivateAccount(ctx context.Context, userID string) error {
	return s.changeStatus(ctx, userID, domain.StatusSuspended,
		domain.EventAccountDeactivated, "Account deactivated", domain.UserEventDeactivated)
}

// ReactivateAccount restores a suspended account and clears any lockout
// left over from before the suspension. Deleted accounts stay deleted.
func (s *authService) ReactivateAccount(ctx context.Context, userID string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Status == domain.StatusDeleted {
		return domain.ErrAccountUnavailable
	}

	user.Status = domain.StatusActive
	user.Security.FailedLoginAttempts = 0
	user.Security.LockoutUntil = nil
	user.Security.AppendEvent(domain.EventAccountReactivated, "Account reactivated", "", "")
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.publish(ctx, func(ctx context.Context) error {
		return s.events.PublishAccountStatusChanged(ctx, domain.UserEventReactivated, user)
	})
	return nil
}

// DeleteAccount soft-deletes the account. Deleted accounts cannot be
// reactivated. Session rows are purged once their tokens are revoked;
// the user row itself is kept with DELETED status.
func (s *authService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.changeStatus(ctx, userID, domain.StatusDeleted,
		domain.EventAccountDeactivated, "Account deleted", domain.UserEventDeleted); err != nil {
		return err
	}
	return s.sessions.PurgeSessions(ctx, userID)
}

func (s *authService) changeStatus(
	ctx context.Context,
	userID string,
	status domain.Status,
	eventType, description string,
	publishType domain.UserEventType,
) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	user.Status = status
	user.Security.AppendEvent(eventType, description, "", "")
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if err := s.sessions.TerminateAllSessions(ctx, user.ID); err != nil {
		return err
	}

	s.publish(ctx, func(ctx context.Context) error {
		return s.events.PublishAccountStatusChanged(ctx, publishType, user)
	})
	return nil
}

// publish runs a best-effort event publish. Auth flows never fail on
// broker trouble.
func (s *authService) publish(ctx context.Context, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		s.log.Warn(fmt.Sprintf("Failed to publish event: %v", err))
	}
}

func (s *authService) authResponse(user *domain.User, accessToken, refreshToken string) *dto.AuthResponse {
	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.AccessTokenTTL.Seconds()),
		User:         toUserResponse(user),
	}
}

func toUserResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		Role:          string(user.Role),
		Status:        string(user.Status),
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
	}
}
