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

	"github.com/meenabazaar/order-management/internal/core/domain/order"
	"github.com/meenabazaar/order-management/internal/core/ports"
	"github.com/meenabazaar/order-management/internal/infrastructure/mongodb"
)

// OrderRepository implements the order repository interface on MongoDB.
type OrderRepository struct {
	db     *mongodb.Database
	logger *logrus.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(database *mongodb.Database, logger *logrus.Logger) ports.OrderRepository {
	return &OrderRepository{db: database, logger: logger}
}

func (r *OrderRepository) collection() *mongo.Collection {
	return r.db.Collection(mongodb.CollectionOrders)
}

// orderIDFilter matches an order id regardless of casing, the way order ids
// are looked up throughout the system.
func orderIDFilter(orderID string) bson.M {
	return bson.M{"orderId": bson.Regex{Pattern: "^" + regexp.QuoteMeta(orderID) + "$", Options: "i"}}
}

// Create inserts a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.OrderDate.IsZero() {
		o.OrderDate = now
	}

	res, err := r.collection().InsertOne(ctx, o)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("order %s: %w", o.OrderID, ports.ErrDuplicate)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"order_id": o.OrderID}).WithError(err).Error("db: failed to create order")
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		o.ID = id
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"order_id": o.OrderID, "branch": o.Branch}).Info("db: order created")
	}
	return nil
}

// GetByID retrieves an order by its store id.
func (r *OrderRepository) GetByID(ctx context.Context, id bson.ObjectID) (*order.Order, error) {
	var o order.Order
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order %s: %w", id.Hex(), ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by id: %w", err)
	}
	return &o, nil
}

// GetByOrderID retrieves an order by business id, case-insensitively.
func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	var o order.Order
	err := r.collection().FindOne(ctx, orderIDFilter(orderID)).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order %s: %w", orderID, ports.ErrNotFound)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"order_id": orderID}).WithError(err).Error("db: failed to get order")
		}
		return nil, fmt.Errorf("failed to get order by order id: %w", err)
	}
	return &o, nil
}

// Update replaces the stored order document.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	o.UpdatedAt = time.Now()

	res, err := r.collection().ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"order_id": o.OrderID}).WithError(err).Error("db: failed to update order")
		}
		return fmt.Errorf("failed to update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("order %s: %w", o.OrderID, ports.ErrNotFound)
	}
	return nil
}

// UpdatePaymentStatus patches only the payment status and returns the updated order.
func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id bson.ObjectID, status order.PaymentStatus) (*order.Order, error) {
	var o order.Order
	err := r.collection().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"paymentStatus": status, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order %s: %w", id.Hex(), ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	return &o, nil
}

func (r *OrderRepository) list(ctx context.Context, filter bson.M) ([]*order.Order, error) {
	cur, err := r.collection().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Error("db: failed to list orders")
		}
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	var orders []*order.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]*order.Order, error) {
	return r.list(ctx, bson.M{})
}

// ListByBranch returns the orders belonging to the named branch.
func (r *OrderRepository) ListByBranch(ctx context.Context, branchName string) ([]*order.Order, error) {
	return r.list(ctx, bson.M{"branch": branchName})
}

// ListDeliveredBetween returns delivered orders in [from, to), optionally
// restricted to a branch.
func (r *OrderRepository) ListDeliveredBetween(ctx context.Context, from, to time.Time, branchName string) ([]*order.Order, error) {
	filter := bson.M{
		"deliveryStatus": order.Delivered,
		"deliveredAt":    bson.M{"$gte": from, "$lt": to},
	}
	if branchName != "" {
		filter["branch"] = branchName
	}
	return r.list(ctx, filter)
}

// CountSummary computes the total/paid aggregates, optionally per branch.
func (r *OrderRepository) CountSummary(ctx context.Context, branchName string) (*order.CountSummary, error) {
	base := bson.M{}
	if branchName != "" {
		base["branch"] = branchName
	}

	total, err := r.collection().CountDocuments(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	paidFilter := bson.M{"paymentStatus": order.PaymentPaid}
	if branchName != "" {
		paidFilter["branch"] = branchName
	}
	paid, err := r.collection().CountDocuments(ctx, paidFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to count paid orders: %w", err)
	}

	return &order.CountSummary{
		TotalOrders:    int(total),
		PaidOrders:     int(paid),
		PercentagePaid: formatPercentage(int(paid), int(total)),
	}, nil
}

// DeleteByBranch removes every order belonging to the named branch.
func (r *OrderRepository) DeleteByBranch(ctx context.Context, branchName string) error {
	res, err := r.collection().DeleteMany(ctx, bson.M{"branch": branchName})
	if err != nil {
		return fmt.Errorf("failed to delete branch orders: %w", err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"branch": branchName, "deleted": res.DeletedCount}).Info("db: branch orders deleted")
	}
	return nil
}

// RelabelBranch rewrites the denormalized branch name on every order that
// carries the old name.
func (r *OrderRepository) RelabelBranch(ctx context.Context, oldName, newName string) error {
	res, err := r.collection().UpdateMany(ctx,
		bson.M{"branch": oldName},
		bson.M{"$set": bson.M{"branch": newName, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to relabel branch on orders: %w", err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"old": oldName, "new": newName, "modified": res.ModifiedCount}).Info("db: orders relabeled to renamed branch")
	}
	return nil
}

// formatPercentage renders paid/active ratios the way the dashboard expects.
func formatPercentage(part, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(part)/float64(total)*100)
}
