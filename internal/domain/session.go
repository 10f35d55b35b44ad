package domain

import (
	"strings"
	"time"
)

// DeviceInfo describes the client that opened a session, derived from
// the request's User-Agent header and remote address.
type DeviceInfo struct {
	UserAgent  string `json:"user_agent"`
	IPAddress  string `json:"ip_address"`
	DeviceType string `json:"device_type"`
	OS         string `json:"os,omitempty"`
	Browser    string `json:"browser,omitempty"`
}

// ParseDeviceInfo builds a DeviceInfo from raw request metadata using
// naive substring matching. Good enough for session listing; not a
// fingerprinting mechanism.
func ParseDeviceInfo(userAgent, ip string) DeviceInfo {
	info := DeviceInfo{
		UserAgent:  userAgent,
		IPAddress:  ip,
		DeviceType: "DESKTOP",
	}

	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "mobile"), strings.Contains(ua, "android"), strings.Contains(ua, "iphone"):
		info.DeviceType = "MOBILE"
	case strings.Contains(ua, "tablet"), strings.Contains(ua, "ipad"):
		info.DeviceType = "TABLET"
	}

	switch {
	case strings.Contains(ua, "windows"):
		info.OS = "Windows"
	case strings.Contains(ua, "mac"):
		info.OS = "macOS"
	case strings.Contains(ua, "linux"):
		info.OS = "Linux"
	case strings.Contains(ua, "android"):
		info.OS = "Android"
	case strings.Contains(ua, "ios"), strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		info.OS = "iOS"
	}

	switch {
	case strings.Contains(ua, "edge"):
		info.Browser = "Edge"
	case strings.Contains(ua, "chrome"):
		info.Browser = "Chrome"
	case strings.Contains(ua, "firefox"):
		info.Browser = "Firefox"
	case strings.Contains(ua, "safari"):
		info.Browser = "Safari"
	}

	return info
}

// Session binds a user, a device and a token pair. SessionToken holds
// the refresh token; the stored access token is replaced on every
// refresh. An inactive session is dead regardless of ExpiresAt.
type Session struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	SessionToken string     `json:"-"`
	AccessToken  string     `json:"-"`
	DeviceInfo   DeviceInfo `json:"device_info"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	LastActivity time.Time  `json:"last_activity"`
}

// IsExpired reports whether the session passed its hard expiry.
func (s *Session) IsExpired() bool {
	return s.ExpiresAt.Before(time.Now())
}

// Touch updates the session's last-activity timestamp.
func (s *Session) Touch() {
	s.LastActivity = time.Now()
}
