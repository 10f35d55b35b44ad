package domain

import (
	"time"
)

// Role represents user role
type Role string

const (
	RoleSubscriber Role = "SUBSCRIBER"
	RoleCreator    Role = "CREATOR"
	RoleAdmin      Role = "ADMIN"
)

// Status represents the account lifecycle state
type Status string

const (
	StatusPendingVerification Status = "PENDING_VERIFICATION"
	StatusActive              Status = "ACTIVE"
	StatusSuspended           Status = "SUSPENDED"
	StatusDeleted             Status = "DELETED"
)

// User represents a user entity
type User struct {
	ID            string          `json:"id"`
	Username      string          `json:"username"`
	Email         string          `json:"email"`
	DisplayName   string          `json:"display_name"`
	PasswordHash  string          `json:"-"` // Never serialize password
	Role          Role            `json:"role"`
	Status        Status          `json:"status"`
	EmailVerified bool            `json:"email_verified"`
	Creator       *CreatorProfile `json:"creator,omitempty"`
	Security      SecurityState   `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	LastActiveAt  *time.Time      `json:"last_active_at,omitempty"`
}

// CreatorProfile holds creator-specific data, present only for CREATOR role
type CreatorProfile struct {
	DisplayName string     `json:"display_name"`
	Verified    bool       `json:"verified"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
}

// IsCreator returns true if the user has the creator role
func (u *User) IsCreator() bool {
	return u.Role == RoleCreator
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsAvailable reports whether the account may authenticate at all.
// Suspended and deleted accounts are rejected before credential checks.
func (u *User) IsAvailable() bool {
	return u.Status != StatusSuspended && u.Status != StatusDeleted
}

// Permissions derives the capability set for the user's role. The
// mapping is total over all roles; an unknown role yields no
// permissions rather than falling through to a default set.
func (u *User) Permissions() []string {
	switch u.Role {
	case RoleAdmin:
		return []string{
			"USER_MANAGEMENT",
			"CREATOR_VERIFICATION",
			"CONTENT_MODERATION",
			"ANALYTICS_VIEW",
			"SYSTEM_SETTINGS",
		}
	case RoleCreator:
		perms := []string{
			"CREATE_CONTENT",
			"MANAGE_SUBSCRIPTIONS",
			"VIEW_ANALYTICS",
			"MANAGE_TIPS",
		}
		if u.Creator != nil && u.Creator.Verified {
			perms = append(perms, "LIVE_STREAM", "CUSTOM_REQUESTS")
		}
		return perms
	case RoleSubscriber:
		return []string{
			"VIEW_CONTENT",
			"SUBSCRIBE",
			"SEND_TIPS",
			"SEND_MESSAGES",
		}
	}
	return nil
}
