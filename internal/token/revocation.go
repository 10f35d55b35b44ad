package token

import (
	"context"
	"fmt"
	"time"

	"github.com/fanvault/user-service/pkg/logger"
	"github.com/fanvault/user-service/pkg/redis"
)

const blacklistPrefix = "auth:blacklist:"

// RevocationList tracks token ids invalidated before their natural
// expiry. Entries carry a TTL equal to the token's remaining lifetime,
// so the set never grows unbounded.
//
// The list fails open: if the cache is unreachable at startup it runs
// in a degraded mode where Revoke is a no-op and IsRevoked always
// reports false, and a cache error at check time is treated as "not
// revoked". Availability of the auth checkpoint is deliberately put
// above strict revocation here.
type RevocationList struct {
	cache     *redis.Client
	log       *logger.Logger
	available bool
}

// NewRevocationList probes the cache once and records whether
// revocation is operational. A nil client yields a degraded list.
func NewRevocationList(ctx context.Context, cache *redis.Client) *RevocationList {
	log := logger.Get()
	available := false

	if cache != nil {
		if err := cache.Ping(ctx); err != nil {
			log.Warn(fmt.Sprintf("Revocation cache unreachable, token revocation disabled: %v", err))
		} else {
			available = true
		}
	} else {
		log.Warn("No revocation cache configured, token revocation disabled")
	}

	return &RevocationList{
		cache:     cache,
		log:       log,
		available: available,
	}
}

// Available reports whether revocation is operational.
func (r *RevocationList) Available() bool {
	return r.available
}

// Revoke inserts a token id with the given TTL. Failures are logged
// and swallowed so a logout or eviction flow never aborts on a cache
// hiccup.
func (r *RevocationList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) {
	if !r.available || ttl <= 0 {
		return
	}

	if err := r.cache.Set(ctx, blacklistPrefix+tokenID, "revoked", ttl).Err(); err != nil {
		r.log.Warn(fmt.Sprintf("Failed to revoke token %s: %v", tokenID, err))
	}
}

// IsRevoked reports whether a token id has been revoked. Cache errors
// degrade to "not revoked" rather than rejecting traffic.
func (r *RevocationList) IsRevoked(ctx context.Context, tokenID string) bool {
	if !r.available {
		return false
	}

	n, err := r.cache.Exists(ctx, blacklistPrefix+tokenID).Result()
	if err != nil {
		r.log.Warn(fmt.Sprintf("Revocation check failed for token %s, allowing: %v", tokenID, err))
		return false
	}
	return n > 0
}
