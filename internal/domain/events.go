package domain

import "time"

// UserEventType represents the type of user account event
type UserEventType string

const (
	UserEventRegistered      UserEventType = "user.registered"
	UserEventLoggedIn        UserEventType = "user.logged_in"
	UserEventLockedOut       UserEventType = "user.locked_out"
	UserEventPasswordChanged UserEventType = "user.password_changed"
	UserEventDeactivated     UserEventType = "user.deactivated"
	UserEventReactivated     UserEventType = "user.reactivated"
	UserEventDeleted         UserEventType = "user.deleted"
	UserEventEmailVerified   UserEventType = "user.email_verified"
)

// UserEvent is a user account event published to Kafka
type UserEvent struct {
	EventID    string         `json:"event_id"`
	EventType  UserEventType  `json:"event_type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Version    int            `json:"version"`
	UserData   *UserEventData `json:"data"`
}

// UserEventData contains the user data carried in the event
type UserEventData struct {
	UserID        string     `json:"user_id"`
	Username      string     `json:"username"`
	Email         string     `json:"email,omitempty"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	IPAddress     string     `json:"ip_address,omitempty"`
	UserAgent     string     `json:"user_agent,omitempty"`
	LockedUntil   *time.Time `json:"locked_until,omitempty"`
	EmailVerified bool       `json:"email_verified"`
}

// NewUserEvent creates a user event from the current user state
func NewUserEvent(eventType UserEventType, user *User, eventID string) *UserEvent {
	data := &UserEventData{
		UserID:        user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Role:          string(user.Role),
		Status:        string(user.Status),
		EmailVerified: user.EmailVerified,
		LockedUntil:   user.Security.LockoutUntil,
	}

	return &UserEvent{
		EventID:    eventID,
		EventType:  eventType,
		OccurredAt: time.Now(),
		Version:    1,
		UserData:   data,
	}
}

// Key returns the partition key for the event. Events for the same user
// must land on the same partition to preserve ordering.
func (e *UserEvent) Key() string {
	return e.UserData.UserID
}
