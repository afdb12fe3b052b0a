package repository

import (
	"context"
	"time"
)

// INonceStore records consumed state-token nonces so a token cannot be
// replayed within its validity window. Consume returns false when the nonce
// was already used.
type INonceStore interface {
	Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error)
}
