package repositories

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/meenabazaar/order-management/internal/core/domain/order"
	"github.com/meenabazaar/order-management/internal/core/domain/user"
	"github.com/meenabazaar/order-management/internal/core/ports"
)

// Invalidator flushes cache entries derived from changed records. It only
// ever deletes keys, never writes values, so replaying an invalidation or
// racing two of them cannot leave the cache wrong, only cold. Delete failures
// are logged and swallowed; the entry TTL bounds the staleness they leave.
type Invalidator struct {
	cache  ports.Cache
	logger *logrus.Logger
}

// NewInvalidator creates a cache invalidator over the given cache.
func NewInvalidator(cache ports.Cache, logger *logrus.Logger) ports.CacheInvalidator {
	return &Invalidator{cache: cache, logger: logger}
}

func (iv *Invalidator) flush(ctx context.Context, keys ...string) {
	if iv.cache == nil || len(keys) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(keys))
	uniq := keys[:0]
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	if err := iv.cache.Delete(ctx, uniq...); err != nil {
		for _, k := range uniq {
			cacheFaults.WithLabelValues(keyFamily(k)).Inc()
		}
		if iv.logger != nil {
			iv.logger.WithFields(logrus.Fields{"keys": uniq}).WithError(err).Warn("cache: invalidation failed, entries expire by TTL")
		}
	}
}

// orderScopeKeys are the list and count views an order in the named branch
// can appear in.
func orderScopeKeys(branchName string) []string {
	keys := []string{orderListAdminKey(), orderCountAdminKey()}
	if branchName != "" {
		keys = append(keys, orderListBranchKey(branchName), orderCountBranchKey(branchName))
	}
	return keys
}

func userScopeKeys(u *user.User) []string {
	keys := []string{userListAdminKey(), userCountAdminKey()}
	if u != nil && u.HasBranch() {
		keys = append(keys, userListBranchKey(u.BranchID), userCountBranchKey(u.BranchID))
	}
	return keys
}

// OrderChanged flushes the by-id entry plus the list/count views on both
// sides of the change. When the branch differs between before and after, both
// branches' views are flushed.
func (iv *Invalidator) OrderChanged(ctx context.Context, before, after *order.Order) {
	var keys []string
	if before != nil {
		keys = append(keys, orderKey(before.OrderID))
		keys = append(keys, orderScopeKeys(before.Branch)...)
	}
	if after != nil {
		keys = append(keys, orderKey(after.OrderID))
		keys = append(keys, orderScopeKeys(after.Branch)...)
	}
	iv.flush(ctx, keys...)
}

// UserChanged flushes the by-id entry plus the list/count views on both sides
// of the change, covering branch reassignments.
func (iv *Invalidator) UserChanged(ctx context.Context, before, after *user.User) {
	var keys []string
	if before != nil {
		keys = append(keys, userKey(before.ID))
		keys = append(keys, userScopeKeys(before)...)
	}
	if after != nil {
		keys = append(keys, userKey(after.ID))
		keys = append(keys, userScopeKeys(after)...)
	}
	iv.flush(ctx, keys...)
}

// BranchRenamed flushes every view keyed by either the old or the new branch
// name, plus the by-id entries of the relabeled orders and users, whose cached
// copies still carry the old name.
func (iv *Invalidator) BranchRenamed(ctx context.Context, oldName, newName string, orders []*order.Order, users []*user.User) {
	keys := append(orderScopeKeys(oldName), orderScopeKeys(newName)...)
	keys = append(keys, userListAdminKey(), userCountAdminKey())
	for _, o := range orders {
		keys = append(keys, orderKey(o.OrderID))
	}
	for _, u := range users {
		keys = append(keys, userKey(u.ID))
		keys = append(keys, userScopeKeys(u)...)
	}
	iv.flush(ctx, keys...)
	if iv.logger != nil {
		iv.logger.WithFields(logrus.Fields{
			"old": oldName, "new": newName,
			"orders": len(orders), "users": len(users),
		}).Info("cache: branch rename fan-out flushed")
	}
}

// OrdersRemoved flushes the by-id entries of deleted orders plus the views of
// the branch they belonged to.
func (iv *Invalidator) OrdersRemoved(ctx context.Context, branchName string, orders []*order.Order) {
	keys := orderScopeKeys(branchName)
	for _, o := range orders {
		keys = append(keys, orderKey(o.OrderID))
	}
	iv.flush(ctx, keys...)
}
