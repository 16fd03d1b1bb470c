package stores

import (
	"context"
	"time"
)

// Record is the stored state for one identity's active code.
type Record struct {
	CodeHash      []byte
	CreatedAt     time.Time
	ExpiresAt     time.Time
	LastAttemptAt time.Time
	Attempts      int
}

// AttemptState is returned by BeginAttempt after the attempt increment has
// been persisted. Attempts is the post-increment count.
type AttemptState struct {
	CodeHash []byte
	Attempts int
}

// Store is the contract shared by the memory and Redis backends.
//
// Keys are opaque to the store; the engine composes them from tenant and
// normalized identity. Every method that detects an expired or exhausted
// record deletes it before reporting the corresponding sentinel error.
type Store interface {
	// Put stores a fresh record, overwriting any prior record for the key.
	// ttl is the remaining lifetime as computed by the caller's clock;
	// backends with native expiry use it directly.
	Put(ctx context.Context, key string, rec *Record, ttl time.Duration) error

	// Metadata returns the record for observability. Expired records are
	// deleted and reported as ErrRecordNotFound.
	Metadata(ctx context.Context, key string, now time.Time) (*Record, error)

	// Delete removes a record if present. The bool reports whether one existed.
	Delete(ctx context.Context, key string) (bool, error)

	// BeginAttempt reserves one verification attempt: it checks expiry and
	// budget, increments the attempt counter, persists it, and returns the
	// stored hash. Errors: ErrRecordNotFound, ErrRecordExpired,
	// ErrRecordExhausted, ErrStoreUnavailable.
	BeginAttempt(ctx context.Context, key string, now time.Time, maxAttempts int) (*AttemptState, error)

	// Consume removes the record after a successful match. Idempotent.
	Consume(ctx context.Context, key string) error

	// SweepExpired evicts every record whose expiry has passed and returns
	// the eviction count. Backends with native TTL eviction may report zero.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}
