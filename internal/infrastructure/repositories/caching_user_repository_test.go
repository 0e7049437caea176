package repositories

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/meenabazaar/order-management/internal/core/domain/user"
)

func newCachingUserRepo(store *fakeUserStore, cache *fakeCache) *CachingUserRepository {
	return &CachingUserRepository{
		inner: store,
		cache: cache,
		inv:   &Invalidator{cache: cache},
		ttl:   testTTL,
	}
}

func TestUserGetByID_ReadThrough(t *testing.T) {
	id := bson.NewObjectID()
	store := &fakeUserStore{
		getByIDFn: func(ctx context.Context, gotID bson.ObjectID) (*user.User, error) {
			return &user.User{ID: gotID, Name: "Asha"}, nil
		},
	}
	cache := newFakeCache()
	repo := newCachingUserRepo(store, cache)

	if _, err := repo.GetByID(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.getByIDCalls != 1 {
		t.Fatalf("expected 1 store read, got %d", store.getByIDCalls)
	}
}

func TestUserCachedCopyCarriesNoCredentials(t *testing.T) {
	id := bson.NewObjectID()
	store := &fakeUserStore{
		getByIDFn: func(ctx context.Context, gotID bson.ObjectID) (*user.User, error) {
			return &user.User{
				ID:                 gotID,
				Email:              "asha@example.com",
				PasswordHash:       "$2a$10$secret",
				ResetPasswordToken: "tok",
			}, nil
		},
	}
	cache := newFakeCache()
	repo := newCachingUserRepo(store, cache)

	// First read populates, second read comes back through JSON.
	if _, err := repo.GetByID(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.getByIDCalls != 1 {
		t.Fatal("second read did not come from the cache")
	}
	if u.PasswordHash != "" || u.ResetPasswordToken != "" {
		t.Fatal("credentials leaked into the cached copy")
	}
	if u.Email != "asha@example.com" {
		t.Fatalf("non-credential field lost: %+v", u)
	}
}

func TestUserGetByEmail_BypassesCache(t *testing.T) {
	store := &fakeUserStore{
		getByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
			return &user.User{Email: email, PasswordHash: "$2a$10$secret"}, nil
		},
	}
	repo := newCachingUserRepo(store, newFakeCache())

	for i := 0; i < 2; i++ {
		u, err := repo.GetByEmail(context.Background(), "asha@example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.PasswordHash == "" {
			t.Fatal("credential lookup must see the full store document")
		}
	}
	if store.getByEmailCalls != 2 {
		t.Fatalf("expected 2 store reads, got %d", store.getByEmailCalls)
	}
}

func TestUserListByBranch_CachesOnlyManagerView(t *testing.T) {
	branchID := bson.NewObjectID()
	managerID := bson.NewObjectID()
	store := &fakeUserStore{
		listByBranchFn: func(ctx context.Context, gotBranch, exclude bson.ObjectID) ([]*user.User, error) {
			return []*user.User{{Name: "Agent"}}, nil
		},
	}
	cache := newFakeCache()
	repo := newCachingUserRepo(store, cache)

	// Unfiltered internal read: straight through, nothing cached.
	if _, err := repo.ListByBranch(context.Background(), branchID, bson.ObjectID{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.has(userListBranchKey(branchID)) {
		t.Fatal("unfiltered read must not populate the manager-view key")
	}

	// Manager view: cached under the branch key.
	if _, err := repo.ListByBranch(context.Background(), branchID, managerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cache.has(userListBranchKey(branchID)) {
		t.Fatal("manager view not cached")
	}
	if _, err := repo.ListByBranch(context.Background(), branchID, managerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.listByBranchCalls != 2 {
		t.Fatalf("expected 2 store reads (1 unfiltered + 1 miss), got %d", store.listByBranchCalls)
	}
}

func TestUserUpdate_FlushesOldAndNewBranchViews(t *testing.T) {
	id := bson.NewObjectID()
	oldBranch := bson.NewObjectID()
	newBranch := bson.NewObjectID()
	store := &fakeUserStore{
		getByIDFn: func(ctx context.Context, gotID bson.ObjectID) (*user.User, error) {
			return &user.User{ID: gotID, BranchID: oldBranch, BranchName: "Delhi"}, nil
		},
	}
	cache := newFakeCache()
	cache.seed(userKey(id), struct{}{})
	cache.seed(userListBranchKey(oldBranch), struct{}{})
	cache.seed(userListBranchKey(newBranch), struct{}{})
	cache.seed(userListAdminKey(), struct{}{})
	repo := newCachingUserRepo(store, cache)

	moved := &user.User{ID: id, BranchID: newBranch, BranchName: "Mumbai"}
	if err := repo.Update(context.Background(), moved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range []string{
		userKey(id),
		userListBranchKey(oldBranch),
		userListBranchKey(newBranch),
		userListAdminKey(),
	} {
		if cache.has(key) {
			t.Fatalf("key %q survived the branch reassignment", key)
		}
	}
}

func TestUserSetBranch_PreservesCredentialsPastCacheHotCopy(t *testing.T) {
	id := bson.NewObjectID()
	branchID := bson.NewObjectID()
	stored := &user.User{
		ID:                 id,
		Email:              "asha@example.com",
		PasswordHash:       "$2a$10$secret",
		ResetPasswordToken: "tok",
	}
	store := &fakeUserStore{
		getByIDFn: func(ctx context.Context, gotID bson.ObjectID) (*user.User, error) {
			copied := *stored
			return &copied, nil
		},
		setBranchFn: func(ctx context.Context, gotID, gotBranch bson.ObjectID, branchName string) error {
			stored.BranchID = gotBranch
			stored.BranchName = branchName
			return nil
		},
	}
	cache := newFakeCache()
	repo := newCachingUserRepo(store, cache)

	// Make the entry cache-hot, the way the auth middleware's per-request
	// reload does, and confirm the cached copy is the credential-stripped one.
	if _, err := repo.GetByID(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hot, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hot.PasswordHash != "" {
		t.Fatal("expected the cached copy to carry no credentials")
	}

	if err := repo.SetBranch(context.Background(), id, branchID, "Delhi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.PasswordHash != "$2a$10$secret" || stored.ResetPasswordToken != "tok" {
		t.Fatalf("branch assignment clobbered credentials: %+v", stored)
	}
	if stored.BranchID != branchID || stored.BranchName != "Delhi" {
		t.Fatalf("branch assignment not written: %+v", stored)
	}
	if cache.has(userKey(id)) {
		t.Fatal("stale by-id entry survived the assignment")
	}
}

func TestUserSetBranch_FlushesOldAndNewBranchViews(t *testing.T) {
	id := bson.NewObjectID()
	oldBranch := bson.NewObjectID()
	newBranch := bson.NewObjectID()
	store := &fakeUserStore{
		getByIDFn: func(ctx context.Context, gotID bson.ObjectID) (*user.User, error) {
			return &user.User{ID: gotID, BranchID: oldBranch, BranchName: "Delhi"}, nil
		},
	}
	cache := newFakeCache()
	cache.seed(userKey(id), struct{}{})
	cache.seed(userListBranchKey(oldBranch), struct{}{})
	cache.seed(userListBranchKey(newBranch), struct{}{})
	cache.seed(userListAdminKey(), struct{}{})
	repo := newCachingUserRepo(store, cache)

	if err := repo.SetBranch(context.Background(), id, newBranch, "Mumbai"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range []string{
		userKey(id),
		userListBranchKey(oldBranch),
		userListBranchKey(newBranch),
		userListAdminKey(),
	} {
		if cache.has(key) {
			t.Fatalf("key %q survived the reassignment", key)
		}
	}
}

func TestUserDelete_FlushesEvenWhenPrereadFails(t *testing.T) {
	id := bson.NewObjectID()
	store := &fakeUserStore{} // GetByID returns not-found
	cache := newFakeCache()
	cache.seed(userKey(id), struct{}{})
	repo := newCachingUserRepo(store, cache)

	if err := repo.Delete(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.has(userKey(id)) {
		t.Fatal("by-id entry survived the delete")
	}
}
