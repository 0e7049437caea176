package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/meenabazaar/order-management/internal/core/domain/user"
	"github.com/meenabazaar/order-management/internal/core/ports"
	"github.com/meenabazaar/order-management/internal/infrastructure/mongodb"
)

// UserRepository implements the user repository interface on MongoDB.
type UserRepository struct {
	db     *mongodb.Database
	logger *logrus.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(database *mongodb.Database, logger *logrus.Logger) ports.UserRepository {
	return &UserRepository{db: database, logger: logger}
}

func (r *UserRepository) collection() *mongo.Collection {
	return r.db.Collection(mongodb.CollectionUsers)
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	res, err := r.collection().InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %s: %w", u.Email, ports.ErrDuplicate)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"email": u.Email}).WithError(err).Error("db: failed to create user")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		u.ID = id
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"user_id": u.ID.Hex(), "email": u.Email}).Info("db: user created")
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, filter bson.M, what string) (*user.User, error) {
	var u user.User
	err := r.collection().FindOne(ctx, filter).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user by %s: %w", what, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", what, err)
	}
	return &u, nil
}

// GetByID retrieves a user by store id.
func (r *UserRepository) GetByID(ctx context.Context, id bson.ObjectID) (*user.User, error) {
	return r.getOne(ctx, bson.M{"_id": id}, "id")
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, bson.M{"email": email}, "email")
}

// GetByName retrieves a user by display name, used for duplicate checks.
func (r *UserRepository) GetByName(ctx context.Context, name string) (*user.User, error) {
	return r.getOne(ctx, bson.M{"name": name}, "name")
}

// GetByMobile retrieves a user by mobile number, used for duplicate checks.
func (r *UserRepository) GetByMobile(ctx context.Context, mobile string) (*user.User, error) {
	return r.getOne(ctx, bson.M{"mobile": mobile}, "mobile")
}

// GetByResetToken retrieves the user holding an unexpired reset token.
func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (*user.User, error) {
	filter := bson.M{
		"resetPasswordToken":   token,
		"resetPasswordExpires": bson.M{"$gt": time.Now()},
	}
	return r.getOne(ctx, filter, "reset token")
}

// GetAdmin returns the admin account if one exists.
func (r *UserRepository) GetAdmin(ctx context.Context) (*user.User, error) {
	return r.getOne(ctx, bson.M{"role": user.RoleAdmin}, "role")
}

// Update replaces the stored user document.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.collection().ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %s: %w", u.Email, ports.ErrDuplicate)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": u.ID.Hex()}).WithError(err).Error("db: failed to update user")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", u.ID.Hex(), ports.ErrNotFound)
	}
	return nil
}

// SetBranch updates only the branch assignment fields. A zero branch id clears
// the assignment.
func (r *UserRepository) SetBranch(ctx context.Context, id bson.ObjectID, branchID bson.ObjectID, branchName string) error {
	update := bson.M{"$set": bson.M{"branch": branchID, "branchName": branchName, "updatedAt": time.Now()}}
	if branchID.IsZero() {
		update = bson.M{
			"$unset": bson.M{"branch": "", "branchName": ""},
			"$set":   bson.M{"updatedAt": time.Now()},
		}
	}
	res, err := r.collection().UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": id.Hex(), "branch": branchName}).WithError(err).Error("db: failed to set branch on user")
		}
		return fmt.Errorf("failed to set branch on user: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id.Hex(), ports.ErrNotFound)
	}
	return nil
}

// Delete removes a user by store id.
func (r *UserRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": id.Hex()}).WithError(err).Error("db: failed to delete user")
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("user %s: %w", id.Hex(), ports.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) list(ctx context.Context, filter bson.M) ([]*user.User, error) {
	cur, err := r.collection().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Error("db: failed to list users")
		}
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	var users []*user.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// ListAll returns every user.
func (r *UserRepository) ListAll(ctx context.Context) ([]*user.User, error) {
	return r.list(ctx, bson.M{})
}

// ListByBranch returns the users assigned to a branch, excluding the given
// user id when non-zero (a manager's list excludes the manager).
func (r *UserRepository) ListByBranch(ctx context.Context, branchID bson.ObjectID, exclude bson.ObjectID) ([]*user.User, error) {
	filter := bson.M{"branch": branchID}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	return r.list(ctx, filter)
}

// ListActive returns every active user.
func (r *UserRepository) ListActive(ctx context.Context) ([]*user.User, error) {
	return r.list(ctx, bson.M{"status": user.StatusActive})
}

// CountSummary computes the active-user aggregates, optionally per branch.
func (r *UserRepository) CountSummary(ctx context.Context, branchID bson.ObjectID) (*user.CountSummary, error) {
	base := bson.M{}
	activeFilter := bson.M{"status": user.StatusActive}
	if !branchID.IsZero() {
		base["branch"] = branchID
		activeFilter["branch"] = branchID
	}

	total, err := r.collection().CountDocuments(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	active, err := r.collection().CountDocuments(ctx, activeFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}

	return &user.CountSummary{
		ActiveUsers:      int(active),
		PercentageActive: formatPercentage(int(active), int(total)),
	}, nil
}

// RelabelBranch rewrites the denormalized branch name on every user assigned
// to the renamed branch.
func (r *UserRepository) RelabelBranch(ctx context.Context, oldName, newName string) error {
	res, err := r.collection().UpdateMany(ctx,
		bson.M{"branchName": oldName},
		bson.M{"$set": bson.M{"branchName": newName, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to relabel branch on users: %w", err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"old": oldName, "new": newName, "modified": res.ModifiedCount}).Info("db: users relabeled to renamed branch")
	}
	return nil
}
