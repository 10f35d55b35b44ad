package security

import (
	"time"

	"github.com/fanvault/user-service/internal/domain"
)

// LockoutPolicy is the pure decision logic for brute-force lockout.
// Both transitions take the current state by value and return the next
// state; callers persist the result. Nothing here touches storage.
type LockoutPolicy struct {
	MaxAttempts     int
	LockoutDuration time.Duration
}

// OnFailure records a failed credential check. The counter only resets
// on the next successful login, not when the lockout window opens.
func (p LockoutPolicy) OnFailure(state domain.SecurityState, now time.Time) domain.SecurityState {
	state.FailedLoginAttempts++
	if state.FailedLoginAttempts >= p.MaxAttempts {
		until := now.Add(p.LockoutDuration)
		state.LockoutUntil = &until
	}
	return state
}

// OnSuccess records a successful credential check: counter cleared,
// lockout lifted, last login stamped.
func (p LockoutPolicy) OnSuccess(state domain.SecurityState, now time.Time) domain.SecurityState {
	state.FailedLoginAttempts = 0
	state.LockoutUntil = nil
	login := now
	state.LastLogin = &login
	return state
}
