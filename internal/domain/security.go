package domain

import (
	"time"
)

// Security event types recorded against an account.
const (
	EventLoginSuccess       = "LOGIN_SUCCESS"
	EventLoginFailed        = "LOGIN_FAILED"
	EventAccountLocked      = "ACCOUNT_LOCKED"
	EventPasswordChanged    = "PASSWORD_CHANGED"
	EventAccountDeactivated = "ACCOUNT_DEACTIVATED"
	EventAccountReactivated = "ACCOUNT_REACTIVATED"
	EventEmailVerified      = "EMAIL_VERIFIED"
)

// SecurityEvent is an immutable audit record appended to a user's
// security log. Events are never edited or removed.
type SecurityEvent struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
	Timestamp   time.Time `json:"timestamp"`
}

// SecurityState holds the per-account brute-force counters and audit
// log. It is embedded in User and mutated only through the lockout
// transition functions and explicit security actions.
type SecurityState struct {
	FailedLoginAttempts int             `json:"failed_login_attempts"`
	LockoutUntil        *time.Time      `json:"lockout_until,omitempty"`
	LastLogin           *time.Time      `json:"last_login,omitempty"`
	Events              []SecurityEvent `json:"events,omitempty"`
}

// IsLocked reports whether the account is currently locked out.
func (s *SecurityState) IsLocked() bool {
	return s.LockoutUntil != nil && s.LockoutUntil.After(time.Now())
}

// AppendEvent records a security event against the account.
func (s *SecurityState) AppendEvent(eventType, description, ip, userAgent string) {
	s.Events = append(s.Events, SecurityEvent{
		Type:        eventType,
		Description: description,
		IPAddress:   ip,
		UserAgent:   userAgent,
		Timestamp:   time.Now(),
	})
}
