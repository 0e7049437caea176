package repositories

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/meenabazaar/order-management/internal/core/domain/user"
	"github.com/meenabazaar/order-management/internal/core/ports"
)

// CachingUserRepository decorates a UserRepository with cache-aside reads and
// delete-on-write invalidation. Credential and duplicate-check lookups bypass
// the cache; they must see the store as it is.
type CachingUserRepository struct {
	inner  ports.UserRepository
	cache  ports.Cache
	inv    ports.CacheInvalidator
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCachingUserRepository wraps inner with the cache-aside layer.
func NewCachingUserRepository(inner ports.UserRepository, cache ports.Cache, inv ports.CacheInvalidator, ttl time.Duration, logger *logrus.Logger) ports.UserRepository {
	return &CachingUserRepository{inner: inner, cache: cache, inv: inv, ttl: ttl, logger: logger}
}

func (c *CachingUserRepository) Create(ctx context.Context, u *user.User) error {
	if err := c.inner.Create(ctx, u); err != nil {
		return err
	}
	c.inv.UserChanged(ctx, nil, u)
	return nil
}

func (c *CachingUserRepository) GetByID(ctx context.Context, id bson.ObjectID) (*user.User, error) {
	key := userKey(id)
	if v, ok := cacheGet[user.User](c.cache, ctx, key); ok {
		return v, nil
	}
	u, err := c.inner.GetByID(ctx, id)
	if err == nil {
		cacheSetSilently(c.cache, ctx, key, u, c.ttl)
	}
	return u, err
}

func (c *CachingUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return c.inner.GetByEmail(ctx, email)
}

func (c *CachingUserRepository) GetByName(ctx context.Context, name string) (*user.User, error) {
	return c.inner.GetByName(ctx, name)
}

func (c *CachingUserRepository) GetByMobile(ctx context.Context, mobile string) (*user.User, error) {
	return c.inner.GetByMobile(ctx, mobile)
}

func (c *CachingUserRepository) GetByResetToken(ctx context.Context, token string) (*user.User, error) {
	return c.inner.GetByResetToken(ctx, token)
}

func (c *CachingUserRepository) GetAdmin(ctx context.Context) (*user.User, error) {
	return c.inner.GetAdmin(ctx)
}

// Update captures the current record first so views on both sides of a branch
// reassignment get flushed.
func (c *CachingUserRepository) Update(ctx context.Context, u *user.User) error {
	before, err := c.inner.GetByID(ctx, u.ID)
	if err != nil && c.logger != nil {
		c.logger.WithFields(logrus.Fields{"user_id": u.ID.Hex()}).WithError(err).Debug("cache: pre-read failed, old branch views expire by TTL")
	}
	if err := c.inner.Update(ctx, u); err != nil {
		return err
	}
	c.inv.UserChanged(ctx, before, u)
	return nil
}

// SetBranch writes only the assignment fields through to the store. The write
// never carries a full document, so a cached copy with credentials stripped
// cannot flow back in through this path.
func (c *CachingUserRepository) SetBranch(ctx context.Context, id bson.ObjectID, branchID bson.ObjectID, branchName string) error {
	before, err := c.inner.GetByID(ctx, id)
	if err != nil && c.logger != nil {
		c.logger.WithFields(logrus.Fields{"user_id": id.Hex()}).WithError(err).Debug("cache: pre-read failed, old branch views expire by TTL")
	}
	if err := c.inner.SetBranch(ctx, id, branchID, branchName); err != nil {
		return err
	}
	after := &user.User{ID: id, BranchID: branchID, BranchName: branchName}
	c.inv.UserChanged(ctx, before, after)
	return nil
}

func (c *CachingUserRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	before, err := c.inner.GetByID(ctx, id)
	if err != nil && c.logger != nil {
		c.logger.WithFields(logrus.Fields{"user_id": id.Hex()}).WithError(err).Debug("cache: pre-read failed, branch views expire by TTL")
	}
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	if before == nil {
		before = &user.User{ID: id}
	}
	c.inv.UserChanged(ctx, before, nil)
	return nil
}

func (c *CachingUserRepository) ListAll(ctx context.Context) ([]*user.User, error) {
	return loadListWithSingleflight(c.cache, ctx, userListAdminKey(), c.ttl, func() ([]*user.User, error) {
		return c.inner.ListAll(ctx)
	})
}

// ListByBranch caches only the manager-scoped view, the one that excludes the
// manager. Unfiltered reads (exclude zero) go to the store so internal jobs
// never share a key with a differently filtered listing.
func (c *CachingUserRepository) ListByBranch(ctx context.Context, branchID bson.ObjectID, exclude bson.ObjectID) ([]*user.User, error) {
	if exclude.IsZero() {
		return c.inner.ListByBranch(ctx, branchID, exclude)
	}
	return loadListWithSingleflight(c.cache, ctx, userListBranchKey(branchID), c.ttl, func() ([]*user.User, error) {
		return c.inner.ListByBranch(ctx, branchID, exclude)
	})
}

func (c *CachingUserRepository) ListActive(ctx context.Context) ([]*user.User, error) {
	return c.inner.ListActive(ctx)
}

func (c *CachingUserRepository) CountSummary(ctx context.Context, branchID bson.ObjectID) (*user.CountSummary, error) {
	key := userCountAdminKey()
	if !branchID.IsZero() {
		key = userCountBranchKey(branchID)
	}
	if v, ok := cacheGet[user.CountSummary](c.cache, ctx, key); ok {
		return v, nil
	}
	s, err := c.inner.CountSummary(ctx, branchID)
	if err == nil {
		cacheSetSilently(c.cache, ctx, key, s, c.ttl)
	}
	return s, err
}

// RelabelBranch flushes the name-derived views. By-id entries of the
// relabeled users are flushed by the rename fan-out, which knows them.
func (c *CachingUserRepository) RelabelBranch(ctx context.Context, oldName, newName string) error {
	if err := c.inner.RelabelBranch(ctx, oldName, newName); err != nil {
		return err
	}
	c.inv.BranchRenamed(ctx, oldName, newName, nil, nil)
	return nil
}

var _ ports.UserRepository = (*CachingUserRepository)(nil)
