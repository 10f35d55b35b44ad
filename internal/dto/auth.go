package dto

import (
	"regexp"
	"time"
	"unicode"
)

// RegisterRequest represents registration request
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=30"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	DisplayName     string `json:"display_name" binding:"required,min=2"`
	DateOfBirth     string `json:"date_of_birth" binding:"required"` // YYYY-MM-DD
}

// ValidatePassword validates password strength requirements:
// - At least 8 characters
// - At least one uppercase letter
// - At least one lowercase letter
// - At least one digit
// - At least one special character
func (r *RegisterRequest) ValidatePassword() (bool, string) {
	password := r.Password

	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}

	if len(password) > 72 {
		return false, "Password must not exceed 72 characters"
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			hasSpecial = true
		}
	}

	if !hasUpper {
		return false, "Password must contain at least one uppercase letter"
	}
	if !hasLower {
		return false, "Password must contain at least one lowercase letter"
	}
	if !hasDigit {
		return false, "Password must contain at least one digit"
	}
	if !hasSpecial {
		return false, "Password must contain at least one special character"
	}

	if r.ConfirmPassword != "" && r.ConfirmPassword != password {
		return false, "Passwords do not match"
	}

	return true, ""
}

// ValidateEmail validates email format more strictly
func (r *RegisterRequest) ValidateEmail() (bool, string) {
	// RFC 5322 compliant email regex (simplified)
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(r.Email) {
		return false, "Invalid email format"
	}
	return true, ""
}

// ValidateAge checks the registrant is at least 18 years old
func (r *RegisterRequest) ValidateAge() (bool, string) {
	dob, err := time.Parse("2006-01-02", r.DateOfBirth)
	if err != nil {
		return false, "Invalid date of birth, expected YYYY-MM-DD"
	}
	if dob.AddDate(18, 0, 0).After(time.Now()) {
		return false, "You must be at least 18 years old to register"
	}
	return true, ""
}

// LoginRequest represents login request; the identifier is a username or email
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest represents logout request; accepts either token of the pair
type LogoutRequest struct {
	Token string `json:"token" binding:"required"`
}

// ChangePasswordRequest represents password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	User         UserResponse `json:"user"`
}

// UserResponse represents user data in response
type UserResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	EmailVerified bool   `json:"email_verified"`
	CreatedAt     string `json:"created_at"`
}

// SessionResponse represents an active session in a session listing
type SessionResponse struct {
	ID           string `json:"id"`
	DeviceType   string `json:"device_type"`
	OS           string `json:"os,omitempty"`
	Browser      string `json:"browser,omitempty"`
	IPAddress    string `json:"ip_address"`
	CreatedAt    string `json:"created_at"`
	LastActivity string `json:"last_activity"`
}
