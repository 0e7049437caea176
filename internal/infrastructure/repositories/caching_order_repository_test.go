package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/meenabazaar/order-management/internal/core/domain/order"
)

const testTTL = time.Minute

func newCachingOrderRepo(store *fakeOrderStore, cache *fakeCache) *CachingOrderRepository {
	return &CachingOrderRepository{
		inner: store,
		cache: cache,
		inv:   &Invalidator{cache: cache},
		ttl:   testTTL,
	}
}

func TestGetByOrderID_ReadThrough(t *testing.T) {
	store := &fakeOrderStore{
		getByOrderIDFn: func(ctx context.Context, orderID string) (*order.Order, error) {
			return &order.Order{OrderID: "ORD-1", Branch: "Delhi"}, nil
		},
	}
	cache := newFakeCache()
	repo := newCachingOrderRepo(store, cache)

	o, err := repo.GetByOrderID(context.Background(), "ORD-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Branch != "Delhi" {
		t.Fatalf("unexpected order: %+v", o)
	}
	if !cache.has(orderKey("ORD-1")) {
		t.Fatal("miss did not populate the cache")
	}

	// Second read is served from cache.
	if _, err := repo.GetByOrderID(context.Background(), "ORD-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.getByOrderIDCalls != 1 {
		t.Fatalf("expected 1 store read, got %d", store.getByOrderIDCalls)
	}

	// Requests differing only in id casing share the entry.
	if _, err := repo.GetByOrderID(context.Background(), "ord-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.getByOrderIDCalls != 1 {
		t.Fatalf("case variant bypassed the cache, %d store reads", store.getByOrderIDCalls)
	}
}

func TestGetByOrderID_CacheFailureIsTransparent(t *testing.T) {
	store := &fakeOrderStore{
		getByOrderIDFn: func(ctx context.Context, orderID string) (*order.Order, error) {
			return &order.Order{OrderID: "ORD-1"}, nil
		},
	}
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")
	cache.setErr = errors.New("connection refused")
	repo := newCachingOrderRepo(store, cache)

	o, err := repo.GetByOrderID(context.Background(), "ORD-1")
	if err != nil {
		t.Fatalf("cache outage must not surface: %v", err)
	}
	if o.OrderID != "ORD-1" {
		t.Fatalf("unexpected order: %+v", o)
	}
}

func TestGetByOrderID_MissNotCachedOnStoreError(t *testing.T) {
	store := &fakeOrderStore{}
	cache := newFakeCache()
	repo := newCachingOrderRepo(store, cache)

	if _, err := repo.GetByOrderID(context.Background(), "ORD-404"); err == nil {
		t.Fatal("expected store error to pass through")
	}
	if cache.has(orderKey("ORD-404")) {
		t.Fatal("failed lookup must not leave a cache entry")
	}
}

func TestUpdate_FlushesBothBranchScopes(t *testing.T) {
	id := bson.NewObjectID()
	store := &fakeOrderStore{
		getByIDFn: func(ctx context.Context, gotID bson.ObjectID) (*order.Order, error) {
			return &order.Order{ID: gotID, OrderID: "ORD-1", Branch: "Delhi"}, nil
		},
	}
	cache := newFakeCache()
	cache.seed(orderKey("ORD-1"), &order.Order{OrderID: "ORD-1", Branch: "Delhi"})
	cache.seed(orderListBranchKey("Delhi"), []*order.Order{})
	cache.seed(orderListBranchKey("Mumbai"), []*order.Order{})
	cache.seed(orderCountBranchKey("Delhi"), &order.CountSummary{})
	cache.seed(orderCountBranchKey("Mumbai"), &order.CountSummary{})
	cache.seed(orderListAdminKey(), []*order.Order{})
	repo := newCachingOrderRepo(store, cache)

	moved := &order.Order{ID: id, OrderID: "ORD-1", Branch: "Mumbai"}
	if err := repo.Update(context.Background(), moved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range []string{
		orderKey("ORD-1"),
		orderListBranchKey("Delhi"),
		orderListBranchKey("Mumbai"),
		orderCountBranchKey("Delhi"),
		orderCountBranchKey("Mumbai"),
		orderListAdminKey(),
	} {
		if cache.has(key) {
			t.Fatalf("key %q survived a branch move", key)
		}
	}
}

func TestUpdate_PrereadFailureStillFlushesAfterSide(t *testing.T) {
	store := &fakeOrderStore{} // GetByID returns not-found
	cache := newFakeCache()
	cache.seed(orderKey("ORD-1"), struct{}{})
	cache.seed(orderListBranchKey("Mumbai"), struct{}{})
	cache.seed(orderListAdminKey(), struct{}{})
	repo := newCachingOrderRepo(store, cache)

	moved := &order.Order{ID: bson.NewObjectID(), OrderID: "ORD-1", Branch: "Mumbai"}
	if err := repo.Update(context.Background(), moved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range []string{orderKey("ORD-1"), orderListBranchKey("Mumbai"), orderListAdminKey()} {
		if cache.has(key) {
			t.Fatalf("key %q survived the update", key)
		}
	}
}

func TestListAll_SingleLoadThenCached(t *testing.T) {
	store := &fakeOrderStore{
		listAllFn: func(ctx context.Context) ([]*order.Order, error) {
			return []*order.Order{{OrderID: "A"}, {OrderID: "B"}}, nil
		},
	}
	cache := newFakeCache()
	repo := newCachingOrderRepo(store, cache)

	for i := 0; i < 3; i++ {
		orders, err := repo.ListAll(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("expected 2 orders, got %d", len(orders))
		}
	}
	if store.listAllCalls != 1 {
		t.Fatalf("expected 1 store query, got %d", store.listAllCalls)
	}
}

func TestCreate_FlushesListsSoNextReadIsFresh(t *testing.T) {
	rows := []*order.Order{{OrderID: "A"}}
	store := &fakeOrderStore{
		listAllFn: func(ctx context.Context) ([]*order.Order, error) {
			out := make([]*order.Order, len(rows))
			copy(out, rows)
			return out, nil
		},
	}
	cache := newFakeCache()
	repo := newCachingOrderRepo(store, cache)

	first, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 order, got %d", len(first))
	}

	created := &order.Order{OrderID: "B", Branch: "Delhi"}
	rows = append(rows, created)
	if err := repo.Create(context.Background(), created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("list served stale after create: got %d orders", len(second))
	}
}

func TestCountSummary_KeyedByScope(t *testing.T) {
	store := &fakeOrderStore{
		countSummaryFn: func(ctx context.Context, branchName string) (*order.CountSummary, error) {
			if branchName == "" {
				return &order.CountSummary{TotalOrders: 10, PaidOrders: 5, PercentagePaid: "50.00%"}, nil
			}
			return &order.CountSummary{TotalOrders: 2, PaidOrders: 2, PercentagePaid: "100.00%"}, nil
		},
	}
	cache := newFakeCache()
	repo := newCachingOrderRepo(store, cache)

	adminCounts, err := repo.CountSummary(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	branchCounts, err := repo.CountSummary(context.Background(), "Delhi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adminCounts.TotalOrders == branchCounts.TotalOrders {
		t.Fatal("admin and branch scopes must not share a count entry")
	}
	if !cache.has(orderCountAdminKey()) || !cache.has(orderCountBranchKey("Delhi")) {
		t.Fatal("count entries not populated under their scope keys")
	}

	if _, err := repo.CountSummary(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.countCalls != 2 {
		t.Fatalf("expected 2 store queries, got %d", store.countCalls)
	}
}

func TestUpdatePaymentStatus_NextCountReadIsFresh(t *testing.T) {
	id := bson.NewObjectID()
	paid := 0
	store := &fakeOrderStore{
		updatePaymentFn: func(ctx context.Context, gotID bson.ObjectID, status order.PaymentStatus) (*order.Order, error) {
			paid++
			return &order.Order{ID: gotID, OrderID: "ORD-1", Branch: "Delhi", PaymentStatus: status}, nil
		},
		countSummaryFn: func(ctx context.Context, branchName string) (*order.CountSummary, error) {
			return &order.CountSummary{TotalOrders: 1, PaidOrders: paid}, nil
		},
	}
	cache := newFakeCache()
	repo := newCachingOrderRepo(store, cache)

	before, err := repo.CountSummary(context.Background(), "Delhi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if before.PaidOrders != 0 {
		t.Fatalf("unexpected baseline: %+v", before)
	}

	if _, err := repo.UpdatePaymentStatus(context.Background(), id, order.PaymentPaid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, err := repo.CountSummary(context.Background(), "Delhi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.PaidOrders != 1 {
		t.Fatalf("count served stale after payment update: %+v", after)
	}
}

func TestDeleteByBranch_FlushesDoomedOrderEntries(t *testing.T) {
	doomed := []*order.Order{{OrderID: "ORD-1", Branch: "Delhi"}, {OrderID: "ORD-2", Branch: "Delhi"}}
	store := &fakeOrderStore{
		listByBranchFn: func(ctx context.Context, branchName string) ([]*order.Order, error) {
			return doomed, nil
		},
	}
	cache := newFakeCache()
	cache.seed(orderKey("ORD-1"), doomed[0])
	cache.seed(orderKey("ORD-2"), doomed[1])
	cache.seed(orderListBranchKey("Delhi"), doomed)
	repo := newCachingOrderRepo(store, cache)

	if err := repo.DeleteByBranch(context.Background(), "Delhi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range []string{orderKey("ORD-1"), orderKey("ORD-2"), orderListBranchKey("Delhi")} {
		if cache.has(key) {
			t.Fatalf("key %q survived the branch delete", key)
		}
	}
}
