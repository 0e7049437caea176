package repositories

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meenabazaar/order-management/internal/core/ports"
)

// ResetGuardRepository implements the reset-attempt guard on the shared
// cache. Each key holds a plain integer counter whose TTL anchors the window
// at the first attempt. A cache outage fails open: blocking password resets
// because the cache is down would be worse than briefly losing the cap.
type ResetGuardRepository struct {
	cache  ports.Cache
	logger *logrus.Logger
}

// NewResetGuardRepository creates a reset guard over the given cache.
func NewResetGuardRepository(cache ports.Cache, logger *logrus.Logger) ports.ResetGuard {
	return &ResetGuardRepository{cache: cache, logger: logger}
}

// Allow checks the counter for the email, records this attempt and starts
// the window on the first attempt. It returns false only when the counter has
// already reached maxAttempts inside the current window.
func (g *ResetGuardRepository) Allow(ctx context.Context, email string, maxAttempts int, window time.Duration) (bool, error) {
	if g.cache == nil {
		return true, nil
	}
	key := resetAttemptKey(email)

	b, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		g.warn(key, err, "read")
		return true, nil
	}
	if ok {
		if n, convErr := strconv.Atoi(string(b)); convErr == nil && n >= maxAttempts {
			return false, nil
		}
	}

	n, err := g.cache.Increment(ctx, key)
	if err != nil {
		g.warn(key, err, "increment")
		return true, nil
	}
	if n == 1 {
		if err := g.cache.Expire(ctx, key, window); err != nil {
			g.warn(key, err, "expire")
		}
	}
	return true, nil
}

func (g *ResetGuardRepository) warn(key string, err error, op string) {
	cacheFaults.WithLabelValues(keyFamily(key)).Inc()
	if g.logger != nil {
		g.logger.WithFields(logrus.Fields{"key": key, "op": op}).WithError(err).Warn("reset guard: cache unavailable, allowing attempt")
	}
}
