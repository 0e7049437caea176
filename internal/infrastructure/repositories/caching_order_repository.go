package repositories

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/meenabazaar/order-management/internal/core/domain/order"
	"github.com/meenabazaar/order-management/internal/core/ports"
)

// CachingOrderRepository decorates an OrderRepository with cache-aside reads
// and delete-on-write invalidation. Writes never update cached values in
// place; they flush the affected keys and let the next reader repopulate.
type CachingOrderRepository struct {
	inner  ports.OrderRepository
	cache  ports.Cache
	inv    ports.CacheInvalidator
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCachingOrderRepository wraps inner with the cache-aside layer.
func NewCachingOrderRepository(inner ports.OrderRepository, cache ports.Cache, inv ports.CacheInvalidator, ttl time.Duration, logger *logrus.Logger) ports.OrderRepository {
	return &CachingOrderRepository{inner: inner, cache: cache, inv: inv, ttl: ttl, logger: logger}
}

func (c *CachingOrderRepository) Create(ctx context.Context, o *order.Order) error {
	if err := c.inner.Create(ctx, o); err != nil {
		return err
	}
	c.inv.OrderChanged(ctx, nil, o)
	return nil
}

// GetByID reads by store id straight from the store. Only the business-id
// lookup is cached.
func (c *CachingOrderRepository) GetByID(ctx context.Context, id bson.ObjectID) (*order.Order, error) {
	return c.inner.GetByID(ctx, id)
}

func (c *CachingOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	key := orderKey(orderID)
	if v, ok := cacheGet[order.Order](c.cache, ctx, key); ok {
		return v, nil
	}
	o, err := c.inner.GetByOrderID(ctx, orderID)
	if err == nil {
		cacheSetSilently(c.cache, ctx, key, o, c.ttl)
	}
	return o, err
}

// Update captures the current record first so views on both sides of a branch
// move get flushed.
func (c *CachingOrderRepository) Update(ctx context.Context, o *order.Order) error {
	before, err := c.inner.GetByID(ctx, o.ID)
	if err != nil && c.logger != nil {
		c.logger.WithFields(logrus.Fields{"order_id": o.OrderID}).WithError(err).Debug("cache: pre-read failed, old branch views expire by TTL")
	}
	if err := c.inner.Update(ctx, o); err != nil {
		return err
	}
	c.inv.OrderChanged(ctx, before, o)
	return nil
}

func (c *CachingOrderRepository) UpdatePaymentStatus(ctx context.Context, id bson.ObjectID, status order.PaymentStatus) (*order.Order, error) {
	o, err := c.inner.UpdatePaymentStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	c.inv.OrderChanged(ctx, nil, o)
	return o, nil
}

func (c *CachingOrderRepository) ListAll(ctx context.Context) ([]*order.Order, error) {
	return loadListWithSingleflight(c.cache, ctx, orderListAdminKey(), c.ttl, func() ([]*order.Order, error) {
		return c.inner.ListAll(ctx)
	})
}

func (c *CachingOrderRepository) ListByBranch(ctx context.Context, branchName string) ([]*order.Order, error) {
	return loadListWithSingleflight(c.cache, ctx, orderListBranchKey(branchName), c.ttl, func() ([]*order.Order, error) {
		return c.inner.ListByBranch(ctx, branchName)
	})
}

// ListDeliveredBetween serves day-scoped delivery reports, always fresh.
func (c *CachingOrderRepository) ListDeliveredBetween(ctx context.Context, from, to time.Time, branchName string) ([]*order.Order, error) {
	return c.inner.ListDeliveredBetween(ctx, from, to, branchName)
}

func (c *CachingOrderRepository) CountSummary(ctx context.Context, branchName string) (*order.CountSummary, error) {
	key := orderCountAdminKey()
	if branchName != "" {
		key = orderCountBranchKey(branchName)
	}
	if v, ok := cacheGet[order.CountSummary](c.cache, ctx, key); ok {
		return v, nil
	}
	s, err := c.inner.CountSummary(ctx, branchName)
	if err == nil {
		cacheSetSilently(c.cache, ctx, key, s, c.ttl)
	}
	return s, err
}

// DeleteByBranch enumerates the doomed orders first so their by-id entries
// can be flushed along with the branch views.
func (c *CachingOrderRepository) DeleteByBranch(ctx context.Context, branchName string) error {
	doomed, _ := c.inner.ListByBranch(ctx, branchName)
	if err := c.inner.DeleteByBranch(ctx, branchName); err != nil {
		return err
	}
	c.inv.OrdersRemoved(ctx, branchName, doomed)
	return nil
}

// RelabelBranch flushes the views keyed by either name. By-id entries of the
// relabeled orders are flushed by the rename fan-out, which knows them.
func (c *CachingOrderRepository) RelabelBranch(ctx context.Context, oldName, newName string) error {
	if err := c.inner.RelabelBranch(ctx, oldName, newName); err != nil {
		return err
	}
	c.inv.BranchRenamed(ctx, oldName, newName, nil, nil)
	return nil
}

var _ ports.OrderRepository = (*CachingOrderRepository)(nil)
