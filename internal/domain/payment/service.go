package payment

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/otakumart/checkout-api/internal/domain/cart"
	"github.com/otakumart/checkout-api/internal/domain/order"
)

// EventPublisher receives best-effort lifecycle notifications.
type EventPublisher interface {
	PaymentCaptured(ctx context.Context, o *order.Order)
}

// Service drives the payment sub-machine for one order: pending ->
// (gateway order minted) -> verified callback -> paid.
type Service struct {
	orders   order.Repository
	carts    cart.Repository
	gateway  Gateway
	secret   []byte
	currency string
	events   EventPublisher
}

// NewService creates a payment Service. gateway may be nil and secret empty
// when credentials are absent from the environment; every operation then
// fails with ErrNotConfigured instead of a generic 500.
func NewService(
	orders order.Repository,
	carts cart.Repository,
	gateway Gateway,
	secret []byte,
	currency string,
	events EventPublisher,
) *Service {
	return &Service{
		orders:   orders,
		carts:    carts,
		gateway:  gateway,
		secret:   secret,
		currency: currency,
		events:   events,
	}
}

// MintResult is the processor-side handle for a local order.
type MintResult struct {
	GatewayOrderID string
	AmountMinor    int64
}

// MintGatewayOrder creates (or returns) the processor-side order for a
// local order. The amount is the immutable totalAmount converted to
// integer minor units, and the receipt tag is the local order id.
//
// If a gateway order is already attached, it is returned as-is instead of
// minting a second remote order; repeated calls would otherwise orphan
// earlier remote orders.
func (s *Service) MintGatewayOrder(ctx context.Context, requesterID, orderID string) (*MintResult, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != requesterID {
		return nil, ErrNotOwner
	}

	amountMinor := o.TotalAmount.Shift(2).IntPart()

	if o.GatewayOrderID != "" {
		return &MintResult{GatewayOrderID: o.GatewayOrderID, AmountMinor: amountMinor}, nil
	}

	if s.gateway == nil {
		return nil, ErrNotConfigured
	}

	gwID, err := s.gateway.CreateOrder(ctx, amountMinor, s.currency, o.ID)
	if err != nil {
		return nil, err
	}

	if err := s.orders.SetGatewayOrder(ctx, o.ID, gwID); err != nil {
		return nil, errors.Wrap(err, "store gateway order id")
	}

	return &MintResult{GatewayOrderID: gwID, AmountMinor: amountMinor}, nil
}

// VerifyRequest carries a processor callback.
type VerifyRequest struct {
	OrderID          string
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// Verify validates a processor callback and, on success, marks the order
// paid and clears the user's cart.
//
// Check order is deliberate and must not drift: signature first, then order
// lookup, then ownership. A bad signature rejects hard with no mutation.
// The whole operation is idempotent: a duplicate callback with the same
// valid payload finds the order already paid, re-deletes an absent cart
// (no-op), and succeeds without publishing a second capture event.
func (s *Service) Verify(ctx context.Context, requesterID string, req VerifyRequest) (*order.Order, error) {
	if len(s.secret) == 0 {
		return nil, ErrNotConfigured
	}

	if !verifySignature(s.secret, req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		return nil, ErrBadSignature
	}

	o, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != requesterID {
		return nil, ErrNotOwner
	}

	wasPaid := o.PaymentStatus == order.PaymentPaid

	if err := s.orders.MarkPaid(ctx, o.ID, req.GatewayPaymentID); err != nil {
		return nil, errors.Wrap(err, "mark paid")
	}
	o.PaymentStatus = order.PaymentPaid
	o.GatewayPaymentID = req.GatewayPaymentID

	if err := s.carts.Delete(ctx, o.UserID); err != nil && !errors.Is(err, cart.ErrNotFound) {
		return nil, errors.Wrap(err, "clear cart")
	}

	// Capture events are not idempotent downstream, so only fire on the
	// actual pending->paid flip.
	if !wasPaid {
		s.events.PaymentCaptured(ctx, o)
	}

	return o, nil
}
