package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func contextWithAuthHeader(t *testing.T, header string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/v1/users/me", nil)
	if header != "" {
		c.Request.Header.Set("Authorization", header)
	}
	return c
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid bearer", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"scheme is case-insensitive", "bearer abc.def.ghi", "abc.def.ghi"},
		{"surrounding whitespace trimmed", "Bearer   abc.def.ghi  ", "abc.def.ghi"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz", ""},
		{"scheme without token", "Bearer", ""},
		{"bare token without scheme", "abc.def.ghi", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := contextWithAuthHeader(t, tt.header)
			if got := ExtractBearerToken(c); got != tt.want {
				t.Errorf("ExtractBearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsPublicPath(t *testing.T) {
	public := []string{"/api/v1/auth/login", "/api/v1/auth/register", "/health"}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"exact public path", "/api/v1/auth/login", true},
		{"prefix match", "/health/live", true},
		{"protected path", "/api/v1/users/me", false},
		{"partial segment does not match", "/api/v1/auth", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPublicPath(tt.path, public); got != tt.want {
				t.Errorf("isPublicPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
