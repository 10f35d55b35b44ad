package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fanvault/user-service/internal/domain"
	"github.com/fanvault/user-service/internal/dto"
	"github.com/fanvault/user-service/internal/middleware"
	"github.com/fanvault/user-service/internal/service"
	"github.com/fanvault/user-service/pkg/response"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if valid, msg := req.ValidateEmail(); !valid {
		response.Error(c, http.StatusBadRequest, "INVALID_EMAIL", msg, "")
		return
	}
	if valid, msg := req.ValidatePassword(); !valid {
		response.Error(c, http.StatusBadRequest, "WEAK_PASSWORD", msg, "")
		return
	}
	if valid, msg := req.ValidateAge(); !valid {
		response.Error(c, http.StatusBadRequest, "AGE_RESTRICTED", msg, "")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Created(c, result)
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req, c.GetHeader("User-Agent"), c.ClientIP())
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, result)
}

// RefreshToken handles token refresh
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, result)
}

// Logout handles user logout. The body carries either token of the pair.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.Token); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Logged out successfully"})
}

// LogoutAll terminates every session of the authenticated user
// POST /api/v1/auth/logout-all
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.authService.LogoutAll(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "All sessions terminated"})
}

// Me returns the authenticated user's profile
// GET /api/v1/users/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, user)
}

// Sessions lists the authenticated user's active sessions
// GET /api/v1/users/me/sessions
func (h *AuthHandler) Sessions(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	sessions, err := h.authService.GetSessions(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result := make([]dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, dto.SessionResponse{
			ID:           session.ID,
			DeviceType:   session.DeviceInfo.DeviceType,
			OS:           session.DeviceInfo.OS,
			Browser:      session.DeviceInfo.Browser,
			IPAddress:    session.DeviceInfo.IPAddress,
			CreatedAt:    session.CreatedAt.Format(time.RFC3339),
			LastActivity: session.LastActivity.Format(time.RFC3339),
		})
	}

	response.Success(c, result)
}

// VerifyEmail marks the authenticated user's email as verified
// POST /api/v1/users/me/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Email verified"})
}

// ChangePassword rotates the authenticated user's password
// POST /api/v1/users/me/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Password changed; all sessions terminated"})
}

// Deactivate suspends the authenticated user's own account
// POST /api/v1/users/me/deactivate
func (h *AuthHandler) Deactivate(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.authService.DeactivateAccount(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Account deactivated"})
}

// Delete soft-deletes the authenticated user's own account
// DELETE /api/v1/users/me
func (h *AuthHandler) Delete(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Account deleted"})
}

// AdminDeactivate suspends any account
// POST /api/v1/admin/users/:id/deactivate
func (h *AuthHandler) AdminDeactivate(c *gin.Context) {
	if err := h.authService.DeactivateAccount(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Account deactivated"})
}

// AdminReactivate restores a suspended account
// POST /api/v1/admin/users/:id/reactivate
func (h *AuthHandler) AdminReactivate(c *gin.Context) {
	if err := h.authService.ReactivateAccount(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Account reactivated"})
}

// AdminDelete soft-deletes any account
// DELETE /api/v1/admin/users/:id
func (h *AuthHandler) AdminDelete(c *gin.Context) {
	if err := h.authService.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Account deleted"})
}

// ValidateToken validates an access token on behalf of other services
// POST /api/v1/auth/validate
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	tokenString := middleware.ExtractBearerToken(c)
	if tokenString == "" {
		var req dto.LogoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Token required in Authorization header or body")
			return
		}
		tokenString = req.Token
	}

	claims, err := h.authService.ValidateToken(c.Request.Context(), tokenString)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"user_id":     claims.Subject,
		"username":    claims.Username,
		"role":        claims.Role,
		"permissions": claims.Permissions,
		"session_id":  claims.SessionID,
	})
}

// respondError maps domain errors to HTTP responses
func (h *AuthHandler) respondError(c *gin.Context, err error) {
	var locked *domain.AccountLockedError
	if errors.As(err, &locked) {
		response.Error(c, http.StatusLocked, "ACCOUNT_LOCKED",
			"Account is temporarily locked due to failed login attempts",
			fmt.Sprintf("locked until %s", locked.Until.Format(time.RFC3339)))
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", "")
	case errors.Is(err, domain.ErrAccountLocked):
		response.Error(c, http.StatusLocked, "ACCOUNT_LOCKED", "Account is temporarily locked", "")
	case errors.Is(err, domain.ErrAccountUnavailable):
		response.Error(c, http.StatusForbidden, "ACCOUNT_UNAVAILABLE", "Account is suspended or deleted", "")
	case errors.Is(err, domain.ErrTokenExpired):
		response.Error(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired", "")
	case errors.Is(err, domain.ErrTokenRevoked):
		response.Error(c, http.StatusUnauthorized, "TOKEN_REVOKED", "Token has been revoked", "")
	case errors.Is(err, domain.ErrTokenInvalid):
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid", "")
	case errors.Is(err, domain.ErrSessionNotFound):
		response.Error(c, http.StatusUnauthorized, "SESSION_NOT_FOUND", "Session not found or inactive", "")
	case errors.Is(err, domain.ErrUserAlreadyExists):
		response.Error(c, http.StatusConflict, "USER_EXISTS", "Username or email already registered", "")
	case errors.Is(err, domain.ErrUserNotFound):
		response.NotFound(c, "User not found")
	default:
		response.InternalError(c, err)
	}
}

// authenticatedUserID reads the user id set by the auth middleware
func authenticatedUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok && userID != ""
}
