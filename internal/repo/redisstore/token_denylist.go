package redisstore

import (
	"context"
	"fmt"
	"time"
)

const denylistPrefix = "boardhub:revoked_jti:"

// TokenDenylist stores revoked refresh-token ids with a TTL matching the token's expiry,
// so Redis drops entries once the token could no longer be used anyway.
type TokenDenylist struct {
	c   *Client
	now func() time.Time
}

func NewTokenDenylist(c *Client) *TokenDenylist {
	return &TokenDenylist{c: c, now: time.Now}
}

func (d *TokenDenylist) Revoke(ctx context.Context, jti string, until time.Time) (bool, error) {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		// already past expiry; verification rejects it without our help
		ttl = time.Second
	}

	ok, err := d.c.redisdb.SetNX(ctx, denylistPrefix+jti, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("revoke jti: %w", err)
	}
	return ok, nil
}
