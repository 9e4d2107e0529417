package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"shopnest-bff/internal/cache"
)

// Blacklist remembers logged out tokens until they would have expired.
type Blacklist struct {
	redis *cache.Client
	now   func() time.Time
}

func NewBlacklist(redis *cache.Client) *Blacklist {
	return &Blacklist{redis: redis, now: time.Now}
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "blacklist:" + hex.EncodeToString(sum[:])
}

// Revoke is a no-op for tokens that are already expired.
func (b *Blacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.now())
	if expiresAt.IsZero() {
		ttl = 24 * time.Hour
	}
	if ttl <= 0 {
		return nil
	}
	return b.redis.Set(ctx, blacklistKey(token), []byte("1"), ttl)
}

func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	_, err := b.redis.Get(ctx, blacklistKey(token))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, cache.ErrMiss):
		return false, nil
	default:
		return false, err
	}
}
