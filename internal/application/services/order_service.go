package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/meenabazaar/order-management/internal/core/domain/order"
	"github.com/meenabazaar/order-management/internal/core/domain/user"
	"github.com/meenabazaar/order-management/internal/core/ports"
)

type OrderService struct {
	repo   ports.OrderRepository
	logger *logrus.Logger
}

func NewOrderService(repo ports.OrderRepository, logger *logrus.Logger) ports.OrderService {
	return &OrderService{repo: repo, logger: logger}
}

// authorize checks branch ownership against the order that is about to be
// returned. The check runs on every read, whether the order came from the
// cache or the store, so a stale cached copy can never widen access.
func (s *OrderService) authorize(caller *user.User, o *order.Order) error {
	if caller == nil || caller.Role == user.RoleAdmin {
		return nil
	}
	if caller.BranchName != "" && strings.EqualFold(caller.BranchName, o.Branch) {
		return nil
	}
	// Branch callers must not learn about other branches' orders.
	return fmt.Errorf("order %s: %w", o.OrderID, ports.ErrNotFound)
}

func (s *OrderService) CreateOrder(ctx context.Context, req *order.CreateOrderRequest) (*order.Order, error) {
	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = order.PaymentPending
	}
	if !paymentStatus.IsValid() {
		return nil, fmt.Errorf("invalid payment status %q", req.PaymentStatus)
	}

	o := &order.Order{
		OrderID:        req.OrderID,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerMobile: req.CustomerMobile,
		Address:        req.Address,
		OrderItems:     req.OrderItems,
		PackageDetails: req.PackageDetails,
		Branch:         req.Branch,
		PaymentStatus:  paymentStatus,
		DeliveryStatus: order.NotDelivered,
		OrderValue:     req.OrderValue,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// UpsertFromHook creates or refreshes an order from the sheet-import webhook.
// An existing order with the same content hash is returned untouched, so
// re-imports are cheap and do not churn the cache.
func (s *OrderService) UpsertFromHook(ctx context.Context, req *order.HookOrderRequest) (*order.Order, bool, error) {
	existing, err := s.repo.GetByOrderID(ctx, req.OrderID)
	if err == nil {
		if req.ContentHash != "" && existing.ContentHash == req.ContentHash {
			return existing, false, nil
		}
		s.applyHook(existing, req)
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if !isNotFound(err) {
		return nil, false, err
	}

	o := &order.Order{
		OrderID:        req.OrderID,
		DeliveryStatus: order.NotDelivered,
		PaymentStatus:  order.PaymentPending,
	}
	s.applyHook(o, req)
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, false, err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"order_id": o.OrderID, "branch": o.Branch}).Info("hook: order imported")
	}
	return o, true, nil
}

func (s *OrderService) applyHook(o *order.Order, req *order.HookOrderRequest) {
	o.CustomerName = req.CustomerName
	o.CustomerEmail = req.CustomerEmail
	o.CustomerMobile = req.CustomerMobile
	o.OrderItems = req.OrderItems
	o.Branch = req.Branch
	o.OrderValue = req.OrderValue
	o.ContentHash = req.ContentHash
	o.RowID = req.RowID
	o.RowNo = req.RowNo
	if !req.OrderDate.IsZero() {
		o.OrderDate = req.OrderDate
	}
	if ps := order.PaymentStatus(strings.ToLower(req.PaymentStatus)); ps.IsValid() {
		o.PaymentStatus = ps
	}
	if ds := order.DeliveryStatus(strings.ToLower(req.DeliveryStatus)); ds.IsValid() {
		o.DeliveryStatus = ds
	}
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string, caller *user.User) (*order.Order, error) {
	o, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(caller, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) UpdateOrder(ctx context.Context, orderID string, req *order.UpdateOrderRequest, caller *user.User) (*order.Order, error) {
	o, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(caller, o); err != nil {
		return nil, err
	}

	if req.Name != nil {
		o.Customer.Name = *req.Name
	}
	if req.Email != nil {
		o.Customer.Email = *req.Email
	}
	if req.Mobile != nil {
		o.Customer.Mobile = *req.Mobile
	}
	if req.DOB != nil {
		o.Customer.DOB = req.DOB
	}
	if req.Address != nil {
		o.Customer.Address = *req.Address
	}
	if req.PackageDetails != nil {
		o.PackageDetails = *req.PackageDetails
	}
	if req.PaymentStatus != nil {
		if !req.PaymentStatus.IsValid() {
			return nil, fmt.Errorf("invalid payment status %q", *req.PaymentStatus)
		}
		o.PaymentStatus = *req.PaymentStatus
	}
	if req.DeliveryStatus != nil {
		if !req.DeliveryStatus.IsValid() {
			return nil, fmt.Errorf("invalid delivery status %q", *req.DeliveryStatus)
		}
		o.DeliveryStatus = *req.DeliveryStatus
	}
	if req.OrderValue != nil {
		o.OrderValue = *req.OrderValue
	}

	// An edit carrying nothing but the customer contact triple is the
	// delivery-completion form.
	if req.OnlyCustomerFields() && o.DeliveryStatus != order.Delivered {
		s.markDelivered(o, caller)
	}

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id bson.ObjectID, status order.PaymentStatus) (*order.Order, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid payment status %q", status)
	}
	return s.repo.UpdatePaymentStatus(ctx, id, status)
}

func (s *OrderService) CompleteDelivery(ctx context.Context, req *order.CompleteDeliveryRequest, caller *user.User) (*order.Order, error) {
	o, err := s.repo.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(caller, o); err != nil {
		return nil, err
	}
	if o.DeliveryStatus == order.Delivered {
		return nil, fmt.Errorf("order %s is already delivered", o.OrderID)
	}

	o.Customer.Name = req.Name
	o.Customer.Email = req.Email
	o.Customer.Mobile = req.Mobile
	o.Customer.Address = req.Address
	s.markDelivered(o, caller)

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"order_id": o.OrderID, "branch": o.Branch}).Info("order delivered")
	}
	return o, nil
}

func (s *OrderService) markDelivered(o *order.Order, caller *user.User) {
	now := time.Now()
	o.DeliveryStatus = order.Delivered
	o.DeliveredAt = &now
	if caller != nil {
		o.DeliveredBy = caller.ID
	}
}

func (s *OrderService) ListOrders(ctx context.Context, caller *user.User) ([]*order.Order, error) {
	if caller == nil || caller.Role == user.RoleAdmin {
		return s.repo.ListAll(ctx)
	}
	if caller.BranchName == "" {
		return []*order.Order{}, nil
	}
	return s.repo.ListByBranch(ctx, caller.BranchName)
}

func (s *OrderService) OrderCounts(ctx context.Context, caller *user.User) (*order.CountSummary, error) {
	if caller == nil || caller.Role == user.RoleAdmin {
		return s.repo.CountSummary(ctx, "")
	}
	if caller.BranchName == "" {
		return &order.CountSummary{PercentagePaid: "0%"}, nil
	}
	return s.repo.CountSummary(ctx, caller.BranchName)
}

// TodayDeliveries reports the orders delivered since local midnight, scoped
// to the caller's branch for non-admins.
func (s *OrderService) TodayDeliveries(ctx context.Context, caller *user.User) (int, []*order.Order, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.Add(24 * time.Hour)

	branchName := ""
	if caller != nil && caller.Role != user.RoleAdmin {
		if caller.BranchName == "" {
			return 0, []*order.Order{}, nil
		}
		branchName = caller.BranchName
	}

	delivered, err := s.repo.ListDeliveredBetween(ctx, from, to, branchName)
	if err != nil {
		return 0, nil, err
	}
	return len(delivered), delivered, nil
}
