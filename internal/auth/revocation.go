package auth

import (
	"context"
	"errors"
	"time"
)

// Revocations is a denylist of refresh-token ids.
// Revoke reports whether this call was the one that revoked jti, so a
// concurrent second use of the same refresh token loses the race.
type Revocations interface {
	Revoke(ctx context.Context, jti string, until time.Time) (bool, error)
}

var ErrTokenRevoked = errors.New("refresh token already used or revoked")
