package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers operation keys that have already been applied,
// so a retried request does not mutate stock or cost twice.
type IdempotencyStore interface {
	// SetNX stores the key if absent and reports whether it was stored.
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release removes a key, allowing the operation to be retried after a
	// partial failure.
	Release(ctx context.Context, key string) error
}
