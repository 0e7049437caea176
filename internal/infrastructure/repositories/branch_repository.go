package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/meenabazaar/order-management/internal/core/domain/branch"
	"github.com/meenabazaar/order-management/internal/core/ports"
	"github.com/meenabazaar/order-management/internal/infrastructure/mongodb"
)

// BranchRepository implements the branch repository interface on MongoDB.
type BranchRepository struct {
	db     *mongodb.Database
	logger *logrus.Logger
}

// NewBranchRepository creates a new branch repository
func NewBranchRepository(database *mongodb.Database, logger *logrus.Logger) ports.BranchRepository {
	return &BranchRepository{db: database, logger: logger}
}

func (r *BranchRepository) collection() *mongo.Collection {
	return r.db.Collection(mongodb.CollectionBranches)
}

func exactInsensitive(value string) bson.Regex {
	return bson.Regex{Pattern: "^" + regexp.QuoteMeta(value) + "$", Options: "i"}
}

// Create inserts a new branch.
func (r *BranchRepository) Create(ctx context.Context, b *branch.Branch) error {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	res, err := r.collection().InsertOne(ctx, b)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("branch %s: %w", b.Code, ports.ErrDuplicate)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"branch": b.Name}).WithError(err).Error("db: failed to create branch")
		}
		return fmt.Errorf("failed to create branch: %w", err)
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		b.ID = id
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"branch_id": b.ID.Hex(), "name": b.Name}).Info("db: branch created")
	}
	return nil
}

// GetByID retrieves a branch by store id.
func (r *BranchRepository) GetByID(ctx context.Context, id bson.ObjectID) (*branch.Branch, error) {
	var b branch.Branch
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("branch %s: %w", id.Hex(), ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return &b, nil
}

// GetByNameOrCode finds a branch whose name or code matches case-insensitively,
// used for duplicate checks.
func (r *BranchRepository) GetByNameOrCode(ctx context.Context, name, code string) (*branch.Branch, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"name": exactInsensitive(name)},
		bson.M{"code": exactInsensitive(code)},
	}}
	var b branch.Branch
	err := r.collection().FindOne(ctx, filter).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("branch %s/%s: %w", name, code, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get branch by name or code: %w", err)
	}
	return &b, nil
}

// Update replaces the stored branch document.
func (r *BranchRepository) Update(ctx context.Context, b *branch.Branch) error {
	b.UpdatedAt = time.Now()

	res, err := r.collection().ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("branch %s: %w", b.Code, ports.ErrDuplicate)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"branch_id": b.ID.Hex()}).WithError(err).Error("db: failed to update branch")
		}
		return fmt.Errorf("failed to update branch: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("branch %s: %w", b.ID.Hex(), ports.ErrNotFound)
	}
	return nil
}

// Delete removes a branch by store id.
func (r *BranchRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("branch %s: %w", id.Hex(), ports.ErrNotFound)
	}
	return nil
}

// List returns every branch.
func (r *BranchRepository) List(ctx context.Context) ([]*branch.Branch, error) {
	cur, err := r.collection().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	var branches []*branch.Branch
	if err := cur.All(ctx, &branches); err != nil {
		return nil, fmt.Errorf("failed to decode branches: %w", err)
	}
	return branches, nil
}

// ListNames returns the compact id/name/code listing used by branch pickers.
func (r *BranchRepository) ListNames(ctx context.Context) ([]*branch.NameEntry, error) {
	proj := options.Find().SetProjection(bson.M{"_id": 1, "name": 1, "code": 1, "manager": 1})
	cur, err := r.collection().Find(ctx, bson.M{}, proj)
	if err != nil {
		return nil, fmt.Errorf("failed to list branch names: %w", err)
	}
	var entries []*branch.NameEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode branch names: %w", err)
	}
	return entries, nil
}

// CountSummary computes the active-branch aggregates.
func (r *BranchRepository) CountSummary(ctx context.Context) (*branch.CountSummary, error) {
	total, err := r.collection().CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count branches: %w", err)
	}
	active, err := r.collection().CountDocuments(ctx, bson.M{"status": branch.StatusActive})
	if err != nil {
		return nil, fmt.Errorf("failed to count active branches: %w", err)
	}
	return &branch.CountSummary{
		ActiveBranches:           int(active),
		PercentageActiveBranches: formatPercentage(int(active), int(total)),
	}, nil
}
