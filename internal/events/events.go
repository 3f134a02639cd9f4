// Package events publishes order lifecycle events to Kafka. Publishing is
// best-effort: events never fail the request that produced them.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/otakumart/checkout-api/internal/domain/order"
)

const (
	TypeOrderCreated    = "order.created"
	TypePaymentCaptured = "payment.captured"

	producerName = "checkout-api"
)

// Envelope wraps every published event with routing and dedup metadata.
// Consumers dedup on EventID; CorrelationID is the order id.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id"`
	Payload       json.RawMessage `json:"payload"`
}

// OrderCreatedPayload describes a freshly snapshotted order.
type OrderCreatedPayload struct {
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Lines         []EventLine     `json:"lines"`
}

// PaymentCapturedPayload describes a verified pending->paid flip.
type PaymentCapturedPayload struct {
	OrderID          string          `json:"order_id"`
	UserID           string          `json:"user_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	GatewayOrderID   string          `json:"gateway_order_id"`
	GatewayPaymentID string          `json:"gateway_payment_id"`
}

// EventLine is one order line as published.
type EventLine struct {
	ProductID       string          `json:"product_id"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

func newEnvelope(eventType, orderID string, payload any) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		CorrelationID: orderID,
		Payload:       raw,
	}, nil
}

func orderCreatedEnvelope(o *order.Order) (*Envelope, error) {
	lines := make([]EventLine, len(o.Items))
	for i, it := range o.Items {
		lines[i] = EventLine{
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtPurchase,
		}
	}
	return newEnvelope(TypeOrderCreated, o.ID, OrderCreatedPayload{
		OrderID:       o.ID,
		UserID:        o.UserID,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: string(o.PaymentMethod),
		Lines:         lines,
	})
}

func paymentCapturedEnvelope(o *order.Order) (*Envelope, error) {
	return newEnvelope(TypePaymentCaptured, o.ID, PaymentCapturedPayload{
		OrderID:          o.ID,
		UserID:           o.UserID,
		TotalAmount:      o.TotalAmount,
		GatewayOrderID:   o.GatewayOrderID,
		GatewayPaymentID: o.GatewayPaymentID,
	})
}

// Nop is a publisher that drops everything. Wired when no brokers are
// configured, and handy in tests.
type Nop struct{}

func (Nop) OrderCreated(_ context.Context, _ *order.Order)    {}
func (Nop) PaymentCaptured(_ context.Context, _ *order.Order) {}
