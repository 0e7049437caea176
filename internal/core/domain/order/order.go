package order

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
)

func (p PaymentStatus) IsValid() bool {
	return p == PaymentPaid || p == PaymentPending
}

type DeliveryStatus string

const (
	Delivered    DeliveryStatus = "delivered"
	NotDelivered DeliveryStatus = "not delivered"
)

func (d DeliveryStatus) IsValid() bool {
	return d == Delivered || d == NotDelivered
}

// PackageDetails describes the physical package attached to an order.
type PackageDetails struct {
	Title    string `bson:"title,omitempty" json:"title,omitempty"`
	Image    string `bson:"image,omitempty" json:"image,omitempty"`
	Quantity int    `bson:"quantity,omitempty" json:"quantity,omitempty"`
}

// CustomerDetails is the contact snapshot captured at delivery time.
type CustomerDetails struct {
	Name    string     `bson:"name,omitempty" json:"name,omitempty"`
	Email   string     `bson:"email,omitempty" json:"email,omitempty"`
	Mobile  string     `bson:"mobile,omitempty" json:"mobile,omitempty"`
	Address string     `bson:"address,omitempty" json:"address,omitempty"`
	DOB     *time.Time `bson:"dob,omitempty" json:"dob,omitempty"`
}

// Order is a delivery order. OrderID is the business identifier and is matched
// case-insensitively everywhere; Branch holds the branch NAME, not its store id.
type Order struct {
	ID             bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	OrderID        string          `bson:"orderId" json:"orderId"`
	CustomerName   string          `bson:"customerName" json:"customerName"`
	CustomerEmail  string          `bson:"customerEmail" json:"customerEmail"`
	CustomerMobile string          `bson:"customerMobile" json:"customerMobile"`
	Address        string          `bson:"address,omitempty" json:"address,omitempty"`
	OrderItems     string          `bson:"orderItems" json:"orderItems"`
	PackageDetails PackageDetails  `bson:"packageDetails,omitempty" json:"packageDetails"`
	Customer       CustomerDetails `bson:"customer,omitempty" json:"customer"`
	Branch         string          `bson:"branch" json:"branch"`
	OrderDate      time.Time       `bson:"orderDate" json:"orderDate"`
	PaymentStatus  PaymentStatus   `bson:"paymentStatus" json:"paymentStatus"`
	DeliveryStatus DeliveryStatus  `bson:"deliveryStatus" json:"deliveryStatus"`
	DeliveredAt    *time.Time      `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	DeliveredBy    bson.ObjectID   `bson:"user,omitempty" json:"deliveredBy,omitempty"`
	OrderValue     float64         `bson:"orderValue" json:"orderValue"`
	ContentHash    string          `bson:"contentHash,omitempty" json:"contentHash,omitempty"`
	RowID          int             `bson:"rowId,omitempty" json:"rowId,omitempty"`
	RowNo          int             `bson:"rowNo,omitempty" json:"rowNo,omitempty"`
	CreatedAt      time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// CreateOrderRequest represents the manual/QR-scan order creation request
type CreateOrderRequest struct {
	OrderID        string         `json:"orderId" validate:"required"`
	CustomerName   string         `json:"customerName" validate:"required"`
	CustomerEmail  string         `json:"customerEmail" validate:"required,email"`
	CustomerMobile string         `json:"customerMobile" validate:"required"`
	Address        string         `json:"address"`
	OrderItems     string         `json:"orderItems" validate:"required"`
	PackageDetails PackageDetails `json:"packageDetails"`
	Branch         string         `json:"branch" validate:"required"`
	PaymentStatus  PaymentStatus  `json:"paymentStatus"`
	OrderValue     float64        `json:"orderValue"`
}

// HookOrderRequest is the sheet-import webhook payload; it upserts by OrderID.
type HookOrderRequest struct {
	OrderID        string    `json:"orderId"`
	CustomerName   string    `json:"customerName"`
	CustomerEmail  string    `json:"customerEmail"`
	CustomerMobile string    `json:"customerMobile"`
	OrderItems     string    `json:"orderItems"`
	Branch         string    `json:"branch"`
	OrderDate      time.Time `json:"orderDate"`
	PaymentStatus  string    `json:"paymentStatus"`
	DeliveryStatus string    `json:"deliveryStatus"`
	OrderValue     float64   `json:"orderValue"`
	ContentHash    string    `json:"contentHash"`
	RowID          int       `json:"rowId"`
	RowNo          int       `json:"rowNo"`
}

// UpdateOrderRequest carries the delivery-agent edit form. When only the
// customer contact fields (name, email, mobile) are present the update is
// treated as a completed delivery.
type UpdateOrderRequest struct {
	Name           *string         `json:"name,omitempty"`
	Email          *string         `json:"email,omitempty"`
	Mobile         *string         `json:"mobile,omitempty"`
	DOB            *time.Time      `json:"dob,omitempty"`
	Address        *string         `json:"address,omitempty"`
	PackageDetails *PackageDetails `json:"packageDetails,omitempty"`
	PaymentStatus  *PaymentStatus  `json:"paymentStatus,omitempty"`
	DeliveryStatus *DeliveryStatus `json:"deliveryStatus,omitempty"`
	OrderValue     *float64        `json:"orderValue,omitempty"`
}

// OnlyCustomerFields reports whether the request touches nothing beyond the
// customer contact triple, which the delivery flow treats as "delivery done".
func (r *UpdateOrderRequest) OnlyCustomerFields() bool {
	return r.Name != nil && r.Email != nil && r.Mobile != nil &&
		r.DOB == nil && r.Address == nil && r.PackageDetails == nil &&
		r.PaymentStatus == nil && r.DeliveryStatus == nil && r.OrderValue == nil
}

// UpdatePaymentRequest updates only the payment status of an order.
type UpdatePaymentRequest struct {
	PaymentStatus PaymentStatus `json:"paymentStatus" validate:"required"`
}

// CompleteDeliveryRequest finalizes a delivery with the customer snapshot.
type CompleteDeliveryRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Mobile  string `json:"mobile"`
	Address string `json:"address"`
}

// CountSummary is the dashboard aggregate for a role scope.
type CountSummary struct {
	TotalOrders    int    `json:"totalOrders"`
	PaidOrders     int    `json:"paidOrders"`
	PercentagePaid string `json:"percentagePaid"`
}
