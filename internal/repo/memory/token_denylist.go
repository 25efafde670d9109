package memory

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/geocoder89/boardhub/internal/cache"
)

const sweepEvery = 256

// TokenDenylist is the in-process refresh-token denylist used when Redis is not configured.
// Entries live until the token's own expiry.
type TokenDenylist struct {
	c      *cache.Cache
	writes atomic.Uint64
}

func NewTokenDenylist() *TokenDenylist {
	return &TokenDenylist{c: cache.New(time.Hour)}
}

func (d *TokenDenylist) Revoke(ctx context.Context, jti string, until time.Time) (bool, error) {
	if d.writes.Add(1)%sweepEvery == 0 {
		d.c.Sweep()
	}
	return d.c.SetIfAbsent("revoked:"+jti, struct{}{}, until), nil
}
