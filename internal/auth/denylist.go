package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records refresh token ids that may no longer be used.
type Denylist interface {
	// Revoke reports false when jti was already revoked.
	Revoke(ctx context.Context, jti string, until time.Time) (bool, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisDenylist stores revoked ids as keys that expire with the token.
type RedisDenylist struct {
	client redis.Cmdable
	prefix string
}

// NewRedisDenylist constructs a RedisDenylist.
func NewRedisDenylist(client redis.Cmdable) *RedisDenylist {
	return &RedisDenylist{client: client, prefix: "trainhub:denylist:"}
}

// Revoke denylists jti until the token would have expired anyway. The key is
// written with SET NX so concurrent revocations of one jti have one winner.
func (d *RedisDenylist) Revoke(ctx context.Context, jti string, until time.Time) (bool, error) {
	ttl := time.Until(until)
	if ttl <= 0 {
		return true, nil
	}
	set, err := d.client.SetNX(ctx, d.prefix+jti, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("auth: revoke token: %w", err)
	}
	return set, nil
}

// IsRevoked reports whether jti was denylisted.
func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := d.client.Get(ctx, d.prefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("auth: check denylist: %w", err)
	}
	return true, nil
}

var _ Denylist = (*RedisDenylist)(nil)
