package ports

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/meenabazaar/order-management/internal/core/domain/branch"
)

// BranchRepository defines the interface for branch data operations.
// Name/code uniqueness is checked case-insensitively.
type BranchRepository interface {
	Create(ctx context.Context, b *branch.Branch) error
	GetByID(ctx context.Context, id bson.ObjectID) (*branch.Branch, error)
	GetByNameOrCode(ctx context.Context, name, code string) (*branch.Branch, error)
	Update(ctx context.Context, b *branch.Branch) error
	Delete(ctx context.Context, id bson.ObjectID) error
	List(ctx context.Context) ([]*branch.Branch, error)
	ListNames(ctx context.Context) ([]*branch.NameEntry, error)
	CountSummary(ctx context.Context) (*branch.CountSummary, error)
}

// BranchService defines the interface for branch business logic. Renaming a
// branch rewrites every order and user record carrying the old name and
// flushes the cache entries derived from it, as one logical operation.
type BranchService interface {
	CreateBranch(ctx context.Context, req *branch.CreateBranchRequest) (*branch.Branch, error)
	GetBranch(ctx context.Context, id bson.ObjectID) (*branch.Branch, error)
	GetBranchForManager(ctx context.Context, managerID bson.ObjectID) (*branch.Branch, error)
	UpdateBranch(ctx context.Context, id bson.ObjectID, req *branch.UpdateBranchRequest) (*branch.Branch, error)
	DeleteBranch(ctx context.Context, id bson.ObjectID) error
	ListBranches(ctx context.Context) ([]*branch.Branch, error)
	ListBranchNames(ctx context.Context) ([]*branch.NameEntry, error)
	BranchCounts(ctx context.Context) (*branch.CountSummary, error)
}
