package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/meenabazaar/order-management/internal/core/domain/order"
	"github.com/meenabazaar/order-management/internal/core/domain/user"
	"github.com/meenabazaar/order-management/internal/core/ports"
)

// fakeCache is an in-memory ports.Cache with injectable failures and TTL
// bookkeeping, standing in for Redis.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration

	getErr  error
	setErr  error
	delErr  error
	incrErr error

	sets    int
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
	}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	b, ok := f.entries[key]
	return b, ok, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = value
	f.ttls[key] = ttl
	f.sets++
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, keys...)
	if f.delErr != nil {
		return f.delErr
	}
	for _, k := range keys {
		delete(f.entries, k)
		delete(f.ttls, k)
	}
	return nil
}

func (f *fakeCache) Increment(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	n := int64(0)
	if b, ok := f.entries[key]; ok {
		parsed, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return 0, err
		}
		n = parsed
	}
	n++
	f.entries[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (f *fakeCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) seed(key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = b
}

func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok
}

func (f *fakeCache) drop(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	delete(f.ttls, key)
}

var _ ports.Cache = (*fakeCache)(nil)

// fakeOrderStore is a function-field stand-in for the Mongo order repository.
type fakeOrderStore struct {
	createFn         func(ctx context.Context, o *order.Order) error
	getByIDFn        func(ctx context.Context, id bson.ObjectID) (*order.Order, error)
	getByOrderIDFn   func(ctx context.Context, orderID string) (*order.Order, error)
	updateFn         func(ctx context.Context, o *order.Order) error
	updatePaymentFn  func(ctx context.Context, id bson.ObjectID, status order.PaymentStatus) (*order.Order, error)
	listAllFn        func(ctx context.Context) ([]*order.Order, error)
	listByBranchFn   func(ctx context.Context, branchName string) ([]*order.Order, error)
	countSummaryFn   func(ctx context.Context, branchName string) (*order.CountSummary, error)
	deleteByBranchFn func(ctx context.Context, branchName string) error

	getByOrderIDCalls int
	listAllCalls      int
	listByBranchCalls int
	countCalls        int
}

func (f *fakeOrderStore) Create(ctx context.Context, o *order.Order) error {
	if f.createFn != nil {
		return f.createFn(ctx, o)
	}
	return nil
}
func (f *fakeOrderStore) GetByID(ctx context.Context, id bson.ObjectID) (*order.Order, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("order: %w", ports.ErrNotFound)
}
func (f *fakeOrderStore) GetByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	f.getByOrderIDCalls++
	if f.getByOrderIDFn != nil {
		return f.getByOrderIDFn(ctx, orderID)
	}
	return nil, fmt.Errorf("order: %w", ports.ErrNotFound)
}
func (f *fakeOrderStore) Update(ctx context.Context, o *order.Order) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, o)
	}
	return nil
}
func (f *fakeOrderStore) UpdatePaymentStatus(ctx context.Context, id bson.ObjectID, status order.PaymentStatus) (*order.Order, error) {
	if f.updatePaymentFn != nil {
		return f.updatePaymentFn(ctx, id, status)
	}
	return nil, fmt.Errorf("order: %w", ports.ErrNotFound)
}
func (f *fakeOrderStore) ListAll(ctx context.Context) ([]*order.Order, error) {
	f.listAllCalls++
	if f.listAllFn != nil {
		return f.listAllFn(ctx)
	}
	return nil, nil
}
func (f *fakeOrderStore) ListByBranch(ctx context.Context, branchName string) ([]*order.Order, error) {
	f.listByBranchCalls++
	if f.listByBranchFn != nil {
		return f.listByBranchFn(ctx, branchName)
	}
	return nil, nil
}
func (f *fakeOrderStore) ListDeliveredBetween(ctx context.Context, from, to time.Time, branchName string) ([]*order.Order, error) {
	return nil, nil
}
func (f *fakeOrderStore) CountSummary(ctx context.Context, branchName string) (*order.CountSummary, error) {
	f.countCalls++
	if f.countSummaryFn != nil {
		return f.countSummaryFn(ctx, branchName)
	}
	return &order.CountSummary{PercentagePaid: "0%"}, nil
}
func (f *fakeOrderStore) DeleteByBranch(ctx context.Context, branchName string) error {
	if f.deleteByBranchFn != nil {
		return f.deleteByBranchFn(ctx, branchName)
	}
	return nil
}
func (f *fakeOrderStore) RelabelBranch(ctx context.Context, oldName, newName string) error {
	return nil
}

var _ ports.OrderRepository = (*fakeOrderStore)(nil)

// fakeUserStore is a function-field stand-in for the Mongo user repository.
type fakeUserStore struct {
	getByIDFn      func(ctx context.Context, id bson.ObjectID) (*user.User, error)
	getByEmailFn   func(ctx context.Context, email string) (*user.User, error)
	updateFn       func(ctx context.Context, u *user.User) error
	setBranchFn    func(ctx context.Context, id bson.ObjectID, branchID bson.ObjectID, branchName string) error
	deleteFn       func(ctx context.Context, id bson.ObjectID) error
	listByBranchFn func(ctx context.Context, branchID, exclude bson.ObjectID) ([]*user.User, error)

	getByIDCalls      int
	getByEmailCalls   int
	listByBranchCalls int
}

func (f *fakeUserStore) Create(ctx context.Context, u *user.User) error { return nil }
func (f *fakeUserStore) GetByID(ctx context.Context, id bson.ObjectID) (*user.User, error) {
	f.getByIDCalls++
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("user: %w", ports.ErrNotFound)
}
func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	f.getByEmailCalls++
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return nil, fmt.Errorf("user: %w", ports.ErrNotFound)
}
func (f *fakeUserStore) GetByName(ctx context.Context, name string) (*user.User, error) {
	return nil, fmt.Errorf("user: %w", ports.ErrNotFound)
}
func (f *fakeUserStore) GetByMobile(ctx context.Context, mobile string) (*user.User, error) {
	return nil, fmt.Errorf("user: %w", ports.ErrNotFound)
}
func (f *fakeUserStore) GetByResetToken(ctx context.Context, token string) (*user.User, error) {
	return nil, fmt.Errorf("user: %w", ports.ErrNotFound)
}
func (f *fakeUserStore) GetAdmin(ctx context.Context) (*user.User, error) {
	return nil, fmt.Errorf("user: %w", ports.ErrNotFound)
}
func (f *fakeUserStore) Update(ctx context.Context, u *user.User) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, u)
	}
	return nil
}
func (f *fakeUserStore) SetBranch(ctx context.Context, id bson.ObjectID, branchID bson.ObjectID, branchName string) error {
	if f.setBranchFn != nil {
		return f.setBranchFn(ctx, id, branchID, branchName)
	}
	return nil
}
func (f *fakeUserStore) Delete(ctx context.Context, id bson.ObjectID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}
func (f *fakeUserStore) ListAll(ctx context.Context) ([]*user.User, error) { return nil, nil }
func (f *fakeUserStore) ListByBranch(ctx context.Context, branchID, exclude bson.ObjectID) ([]*user.User, error) {
	f.listByBranchCalls++
	if f.listByBranchFn != nil {
		return f.listByBranchFn(ctx, branchID, exclude)
	}
	return nil, nil
}
func (f *fakeUserStore) ListActive(ctx context.Context) ([]*user.User, error) { return nil, nil }
func (f *fakeUserStore) CountSummary(ctx context.Context, branchID bson.ObjectID) (*user.CountSummary, error) {
	return &user.CountSummary{PercentageActive: "0%"}, nil
}
func (f *fakeUserStore) RelabelBranch(ctx context.Context, oldName, newName string) error {
	return nil
}

var _ ports.UserRepository = (*fakeUserStore)(nil)
