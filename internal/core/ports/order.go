package ports

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/meenabazaar/order-management/internal/core/domain/order"
	"github.com/meenabazaar/order-management/internal/core/domain/user"
)

// OrderRepository defines the interface for order data operations.
// OrderID lookups are case-insensitive, matching how order ids are stored.
type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	GetByID(ctx context.Context, id bson.ObjectID) (*order.Order, error)
	GetByOrderID(ctx context.Context, orderID string) (*order.Order, error)
	Update(ctx context.Context, o *order.Order) error
	UpdatePaymentStatus(ctx context.Context, id bson.ObjectID, status order.PaymentStatus) (*order.Order, error)
	ListAll(ctx context.Context) ([]*order.Order, error)
	ListByBranch(ctx context.Context, branchName string) ([]*order.Order, error)
	ListDeliveredBetween(ctx context.Context, from, to time.Time, branchName string) ([]*order.Order, error)
	CountSummary(ctx context.Context, branchName string) (*order.CountSummary, error)
	DeleteByBranch(ctx context.Context, branchName string) error
	RelabelBranch(ctx context.Context, oldName, newName string) error
}

// OrderService defines the interface for order business logic. Every operation
// that depends on the caller's branch re-evaluates that check against the
// object it is about to return, whether it came from cache or from the store.
type OrderService interface {
	CreateOrder(ctx context.Context, req *order.CreateOrderRequest) (*order.Order, error)
	UpsertFromHook(ctx context.Context, req *order.HookOrderRequest) (o *order.Order, created bool, err error)
	GetOrder(ctx context.Context, orderID string, caller *user.User) (*order.Order, error)
	UpdateOrder(ctx context.Context, orderID string, req *order.UpdateOrderRequest, caller *user.User) (*order.Order, error)
	UpdatePaymentStatus(ctx context.Context, id bson.ObjectID, status order.PaymentStatus) (*order.Order, error)
	CompleteDelivery(ctx context.Context, req *order.CompleteDeliveryRequest, caller *user.User) (*order.Order, error)
	ListOrders(ctx context.Context, caller *user.User) ([]*order.Order, error)
	OrderCounts(ctx context.Context, caller *user.User) (*order.CountSummary, error)
	TodayDeliveries(ctx context.Context, caller *user.User) (int, []*order.Order, error)
}
