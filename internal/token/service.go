package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fanvault/user-service/internal/domain"
)

// Token type claims.
const (
	TypeAccess  = "ACCESS_TOKEN"
	TypeRefresh = "REFRESH_TOKEN"
)

// Claims is the signed payload carried by both token types. Refresh
// tokens omit the identity fields and carry only subject, session and
// token ids.
type Claims struct {
	Username    string   `json:"username,omitempty"`
	Email       string   `json:"email,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	SessionID   string   `json:"sessionId"`
	Type        string   `json:"type"`
	TokenID     string   `json:"tokenId"`
	jwt.RegisteredClaims
}

// Config holds token service configuration
type Config struct {
	Secret          string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Service signs and verifies bearer tokens. It is stateless except for
// the revocation list.
type Service interface {
	// IssueAccessToken signs a short-lived token carrying full identity claims
	IssueAccessToken(user *domain.User, sessionID string) (string, error)
	// IssueRefreshToken signs a long-lived token carrying minimal claims
	IssueRefreshToken(user *domain.User, sessionID string) (string, error)
	// Verify validates signature, issuer, expiry and revocation state
	Verify(ctx context.Context, tokenString string) (*Claims, error)
	// IsValid collapses any verification failure to false
	IsValid(ctx context.Context, tokenString string) bool
	// Revoke blacklists a token for its remaining lifetime; failures are absorbed
	Revoke(ctx context.Context, tokenString string)
}

type jwtService struct {
	config     *Config
	revocation *RevocationList
}

// NewService creates a token Service backed by the given revocation list.
func NewService(cfg *Config, revocation *RevocationList) Service {
	if cfg.AccessTokenTTL == 0 {
		cfg.AccessTokenTTL = 15 * time.Minute
	}
	if cfg.RefreshTokenTTL == 0 {
		cfg.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	return &jwtService{
		config:     cfg,
		revocation: revocation,
	}
}

// IssueAccessToken signs a short-lived token with the user's identity,
// role and derived permission set.
func (s *jwtService) IssueAccessToken(user *domain.User, sessionID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username:    user.Username,
		Email:       user.Email,
		Role:        string(user.Role),
		Permissions: user.Permissions(),
		SessionID:   sessionID,
		Type:        TypeAccess,
		TokenID:     uuid.New().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

// IssueRefreshToken signs a long-lived token carrying only subject,
// session id and token id.
func (s *jwtService) IssueRefreshToken(user *domain.User, sessionID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		SessionID: sessionID,
		Type:      TypeRefresh,
		TokenID:   uuid.New().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.RefreshTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

// Verify validates the token and returns its claims. Signature, issuer
// and expiry are checked first, then the revocation list. Both checks
// must pass, so the ordering is not security-relevant.
func (s *jwtService) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenInvalid
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(s.config.Issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	if s.revocation.IsRevoked(ctx, claims.TokenID) {
		return nil, domain.ErrTokenRevoked
	}

	return claims, nil
}

// IsValid is the non-throwing wrapper used by the request checkpoint.
func (s *jwtService) IsValid(ctx context.Context, tokenString string) bool {
	_, err := s.Verify(ctx, tokenString)
	return err == nil
}

// Revoke blacklists the token's id for its remaining lifetime. The
// token is decoded without signature verification: revoking a token we
// did not sign is harmless, and logout must work even for tokens that
// just expired. Failures never propagate.
func (s *jwtService) Revoke(ctx context.Context, tokenString string) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return
	}
	if claims.TokenID == "" || claims.ExpiresAt == nil {
		return
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	s.revocation.Revoke(ctx, claims.TokenID, ttl)
}
