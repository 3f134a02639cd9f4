package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the buyer chose to pay at checkout.
type PaymentMethod string

const (
	MethodGateway        PaymentMethod = "gateway"
	MethodCashOnDelivery PaymentMethod = "cod"
	MethodPaypal         PaymentMethod = "paypal"
)

// ParsePaymentMethod validates a payment method tag from a request body.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case MethodGateway, MethodCashOnDelivery, MethodPaypal:
		return m, nil
	}
	return "", &InvalidEnumError{Field: "paymentMethod", Value: s}
}

// PaymentStatus tracks money movement, independent of fulfillment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// ParsePaymentStatus validates a payment status value from a request body.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch ps := PaymentStatus(s); ps {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return ps, nil
	}
	return "", &InvalidEnumError{Field: "paymentStatus", Value: s}
}

// Status tracks physical fulfillment, independent of payment.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus validates a fulfillment status value from a request body.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", &InvalidEnumError{Field: "orderStatus", Value: s}
}

// InvalidEnumError names the field that carried an unknown enum value.
type InvalidEnumError struct {
	Field string
	Value string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// Item is one immutable order line. PriceAtPurchase is captured from the
// catalog at order-creation time and never recomputed, so later price
// changes cannot alter what the buyer owes.
type Item struct {
	ProductID       string          `json:"productId"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase"`
}

// Address is the shipping address denormalized onto the order. It is a copy
// taken at creation time, not a live reference into the user document.
type Address struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Order is the persisted record of one checkout: what was ordered, at what
// price, shipped where, and its two independent status tracks.
type Order struct {
	ID               string
	UserID           string
	Items            []Item
	ShippingAddress  Address
	PaymentMethod    PaymentMethod
	PaymentStatus    PaymentStatus
	Status           Status
	TotalAmount      decimal.Decimal
	GatewayOrderID   string
	GatewayPaymentID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// StatusPatch carries an admin partial update: nil fields keep their prior
// values.
type StatusPatch struct {
	Status        *Status
	PaymentStatus *PaymentStatus
}

// Repository defines persistence operations for orders. Updates are plain
// per-row writes; there is no optimistic-concurrency token, correctness of
// the payment flip rests on its idempotency.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context) ([]Order, error)
	SetGatewayOrder(ctx context.Context, id, gatewayOrderID string) error
	MarkPaid(ctx context.Context, id, gatewayPaymentID string) error
	UpdateStatuses(ctx context.Context, id string, patch StatusPatch) (*Order, error)
}
