package ports

import (
	"context"
	"time"

	"github.com/meenabazaar/order-management/internal/core/domain/order"
	"github.com/meenabazaar/order-management/internal/core/domain/user"
)

// Cache defines the key-value cache contract used by the caching decorators
// and the reset-attempt guard. Implementations should degrade gracefully
// (returning an error without crashing callers) so that application logic can
// fall back to the primary datastore.
type Cache interface {
	// Get returns the raw bytes for key. ok=false if not found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key with TTL (0 or negative means no expiration if supported).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the given keys; absence is not an error.
	Delete(ctx context.Context, keys ...string) error
	// Increment atomically increments the integer counter at key, creating it
	// at 1 if absent, and returns the new value.
	Increment(ctx context.Context, key string) (int64, error)
	// Expire sets the TTL of an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// CacheInvalidator flushes the cache entries whose contents depend on a
// changed record. Invalidation is delete-only and fire-and-forget: failures
// are logged and never surfaced, the TTL bounds any staleness they leave.
type CacheInvalidator interface {
	// OrderChanged flushes the by-id entry and every list/count view that
	// could include the order, before or after the change. Either side may be
	// nil (nil before on create, nil after on delete).
	OrderChanged(ctx context.Context, before, after *order.Order)
	// UserChanged flushes the by-id entry and every list/count view that
	// could include the user. Either side may be nil.
	UserChanged(ctx context.Context, before, after *user.User)
	// BranchRenamed flushes everything keyed by either branch name along with
	// the by-id entries of the relabeled orders and users.
	BranchRenamed(ctx context.Context, oldName, newName string, orders []*order.Order, users []*user.User)
	// OrdersRemoved flushes the by-id entries of deleted orders plus the
	// list/count views of the branch they belonged to.
	OrdersRemoved(ctx context.Context, branchName string, orders []*order.Order)
}

// ResetGuard caps how often a password reset may start for an email address
// inside a fixed window. It is a counter mutated in place, not a cached
// value, and therefore lives outside the read-through/invalidate machinery.
type ResetGuard interface {
	// Allow reports whether another reset attempt may proceed for the email,
	// and counts this attempt if so. The window is anchored at the first
	// attempt.
	Allow(ctx context.Context, email string, maxAttempts int, window time.Duration) (bool, error)
}
