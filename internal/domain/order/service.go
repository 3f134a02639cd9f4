package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/otakumart/checkout-api/internal/domain/cart"
	"github.com/otakumart/checkout-api/internal/domain/product"
	"github.com/otakumart/checkout-api/internal/domain/user"
)

// Sentinel errors for order creation and lookup.
var (
	ErrEmptyCart = fmt.Errorf("cart is empty")
	ErrNotFound  = fmt.Errorf("order not found")
)

// ProductNotFoundError indicates a cart line references a product that no
// longer exists in the catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// EventPublisher receives best-effort lifecycle notifications. Publishing
// must never fail the request.
type EventPublisher interface {
	OrderCreated(ctx context.Context, o *Order)
}

// Service turns the user's current cart into an immutable priced order.
type Service struct {
	users    user.Repository
	products product.Repository
	carts    cart.Repository
	orders   Repository
	events   EventPublisher
}

// NewService creates an order Service with the required collaborators.
func NewService(
	users user.Repository,
	products product.Repository,
	carts cart.Repository,
	orders Repository,
	events EventPublisher,
) *Service {
	return &Service{
		users:    users,
		products: products,
		carts:    carts,
		orders:   orders,
		events:   events,
	}
}

// CreateRequest holds the input for creating an order from the cart.
type CreateRequest struct {
	UserID        string
	AddressID     string
	PaymentMethod PaymentMethod
}

// Create snapshots the user's cart into a new pending order.
//
// Each line captures priceAtPurchase from the catalog at this instant
// (discount price when set) and the resolved address is copied verbatim, so
// neither later price changes nor address edits can alter the order. The
// cart itself is left untouched: it is only cleared when payment
// verification succeeds, which keeps an abandoned checkout retryable.
//
// Stock is not reserved between creation and payment confirmation;
// concurrent checkouts of limited-stock items can oversell.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	u, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	addr, err := u.ResolveAddress(req.AddressID)
	if err != nil {
		return nil, err
	}

	c, err := s.carts.Get(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	// Batch fetch everything the cart references in a single query.
	ids := make([]string, len(c.Items))
	for i, line := range c.Items {
		ids[i] = line.ProductID
	}
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	// Freeze prices and sum the total.
	items := make([]Item, len(c.Items))
	total := decimal.Zero
	for i, line := range c.Items {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: line.ProductID}
		}

		price := p.EffectivePrice()
		items[i] = Item{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			PriceAtPurchase: price,
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	total = total.Round(2)

	now := time.Now().UTC()
	o := &Order{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		Items:         items,
		ShippingAddress: Address{
			FullName:   addr.FullName,
			Phone:      addr.Phone,
			Line1:      addr.Line1,
			Line2:      addr.Line2,
			City:       addr.City,
			State:      addr.State,
			PostalCode: addr.PostalCode,
			Country:    addr.Country,
		},
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: PaymentPending,
		Status:        StatusProcessing,
		TotalAmount:   total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.events.OrderCreated(ctx, o)

	return o, nil
}
