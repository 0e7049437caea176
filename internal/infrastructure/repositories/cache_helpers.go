package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/meenabazaar/order-management/internal/core/ports"
)

// singleflight group for coalescing cache-miss loads in-process
var sf singleflight.Group

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Cache hits by key family.",
	}, []string{"family"})
	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Cache misses by key family.",
	}, []string{"family"})
	cacheFaults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_errors_total",
		Help: "Cache operations that failed and were treated as misses, by key family.",
	}, []string{"family"})
)

// keyFamily is the segment before the first colon, e.g. "orders" for
// "orders:branch:Downtown".
func keyFamily(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

// cacheGet reads and decodes a cached value. Any cache error counts as a miss;
// the caller falls through to the primary store either way.
func cacheGet[T any](c ports.Cache, ctx context.Context, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	b, ok, err := c.Get(ctx, key)
	if err != nil {
		cacheFaults.WithLabelValues(keyFamily(key)).Inc()
		return nil, false
	}
	if !ok {
		cacheMisses.WithLabelValues(keyFamily(key)).Inc()
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		cacheFaults.WithLabelValues(keyFamily(key)).Inc()
		return nil, false
	}
	cacheHits.WithLabelValues(keyFamily(key)).Inc()
	return &v, true
}

// cacheSetSilently stores a value best-effort. A failed population only costs
// the next reader a store round trip.
func cacheSetSilently(c ports.Cache, ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.Set(ctx, key, b, ttl); err != nil {
		cacheFaults.WithLabelValues(keyFamily(key)).Inc()
	}
}

// loadListWithSingleflight coalesces concurrent cache-miss loads of the same
// list key so a cold or flushed key triggers a single store query per process.
func loadListWithSingleflight[T any](cache ports.Cache, ctx context.Context, key string, ttl time.Duration, loader func() ([]T, error)) ([]T, error) {
	if v, ok := cacheGet[[]T](cache, ctx, key); ok {
		return *v, nil
	}
	res, err, _ := sf.Do(key, func() (any, error) {
		if v, ok := cacheGet[[]T](cache, ctx, key); ok {
			return *v, nil
		}
		all, err := loader()
		if err != nil {
			return nil, err
		}
		cacheSetSilently(cache, ctx, key, all, ttl)
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	all, ok := res.([]T)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight result")
	}
	return all, nil
}
