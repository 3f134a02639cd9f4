package order

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otakumart/checkout-api/internal/domain/cart"
	"github.com/otakumart/checkout-api/internal/domain/product"
	"github.com/otakumart/checkout-api/internal/domain/user"
)

// --- Mock implementations ---

type mockUserRepo struct {
	byID map[string]*user.User
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type mockProductRepo struct {
	byID   map[string]*product.Product
	getErr error
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

type mockCartRepo struct {
	carts   map[string]*cart.Cart
	deleted []string
}

func (m *mockCartRepo) Get(_ context.Context, userID string) (*cart.Cart, error) {
	c, ok := m.carts[userID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	return c, nil
}

func (m *mockCartRepo) Put(_ context.Context, c *cart.Cart) error {
	m.carts[c.UserID] = c
	return nil
}

func (m *mockCartRepo) Delete(_ context.Context, userID string) error {
	m.deleted = append(m.deleted, userID)
	delete(m.carts, userID)
	return nil
}

type mockOrderRepo struct {
	lastOrder *Order
	err       error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.lastOrder = o
	return m.err
}

func (m *mockOrderRepo) GetByID(_ context.Context, _ string) (*Order, error) {
	return m.lastOrder, nil
}
func (m *mockOrderRepo) ListByUser(_ context.Context, _ string) ([]Order, error) { return nil, nil }
func (m *mockOrderRepo) List(_ context.Context) ([]Order, error)                 { return nil, nil }
func (m *mockOrderRepo) SetGatewayOrder(_ context.Context, _, _ string) error    { return nil }
func (m *mockOrderRepo) MarkPaid(_ context.Context, _, _ string) error           { return nil }
func (m *mockOrderRepo) UpdateStatuses(_ context.Context, _ string, _ StatusPatch) (*Order, error) {
	return nil, nil
}

type nopPublisher struct{}

func (nopPublisher) OrderCreated(_ context.Context, _ *Order) {}

// --- Helpers ---

func newTestProduct(id string, price, discount string) *product.Product {
	p := &product.Product{
		ID:       id,
		Name:     "Figure " + id,
		Category: "figures",
		Price:    decimal.RequireFromString(price),
		Stock:    10,
	}
	if discount != "" {
		p.DiscountPrice = decimal.RequireFromString(discount)
	}
	return p
}

func newTestUser() *user.User {
	return &user.User{
		ID:   "u1",
		Role: user.RoleUser,
		Addresses: []user.Address{
			{ID: "a1", FullName: "Rei A", Phone: "555-0100", Line1: "1 Chome", City: "Tokyo", State: "TK", PostalCode: "100-0001", Country: "JP"},
		},
	}
}

type fixture struct {
	users    *mockUserRepo
	products *mockProductRepo
	carts    *mockCartRepo
	orders   *mockOrderRepo
	svc      *Service
}

func newFixture(products ...*product.Product) *fixture {
	byID := make(map[string]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	f := &fixture{
		users:    &mockUserRepo{byID: map[string]*user.User{"u1": newTestUser()}},
		products: &mockProductRepo{byID: byID},
		carts:    &mockCartRepo{carts: map[string]*cart.Cart{}},
		orders:   &mockOrderRepo{},
	}
	f.svc = NewService(f.users, f.products, f.carts, f.orders, nopPublisher{})
	return f
}

// --- Tests ---

func TestCreate_SnapshotsPricesAndTotal(t *testing.T) {
	f := newFixture(
		newTestProduct("p1", "100.00", ""),
		newTestProduct("p2", "50.00", "40.00"),
	)
	f.carts.carts["u1"] = &cart.Cart{UserID: "u1", Items: []cart.Item{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	}}

	o, err := f.svc.Create(context.Background(), CreateRequest{
		UserID:        "u1",
		AddressID:     "a1",
		PaymentMethod: MethodGateway,
	})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("240.00").Equal(o.TotalAmount), "total %s", o.TotalAmount)
	require.Len(t, o.Items, 2)
	assert.True(t, decimal.RequireFromString("100.00").Equal(o.Items[0].PriceAtPurchase))
	// Discount price wins over list price.
	assert.True(t, decimal.RequireFromString("40.00").Equal(o.Items[1].PriceAtPurchase))
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.Equal(t, StatusProcessing, o.Status)
	assert.Equal(t, "Tokyo", o.ShippingAddress.City)
}

func TestCreate_TotalImmuneToLaterPriceChange(t *testing.T) {
	p1 := newTestProduct("p1", "100.00", "")
	f := newFixture(p1)
	f.carts.carts["u1"] = &cart.Cart{UserID: "u1", Items: []cart.Item{{ProductID: "p1", Quantity: 1}}}

	o, err := f.svc.Create(context.Background(), CreateRequest{UserID: "u1", AddressID: "a1", PaymentMethod: MethodGateway})
	require.NoError(t, err)

	// Catalog price changes after purchase; the stored order is untouched.
	p1.Price = decimal.RequireFromString("999.00")

	assert.True(t, decimal.RequireFromString("100.00").Equal(f.orders.lastOrder.TotalAmount))
	assert.True(t, decimal.RequireFromString("100.00").Equal(o.Items[0].PriceAtPurchase))
}

func TestCreate_DoesNotClearCart(t *testing.T) {
	f := newFixture(newTestProduct("p1", "10.00", ""))
	f.carts.carts["u1"] = &cart.Cart{UserID: "u1", Items: []cart.Item{{ProductID: "p1", Quantity: 1}}}

	_, err := f.svc.Create(context.Background(), CreateRequest{UserID: "u1", AddressID: "a1", PaymentMethod: MethodCashOnDelivery})
	require.NoError(t, err)

	// The cart only goes away on successful payment verification.
	assert.Empty(t, f.carts.deleted)
	assert.Contains(t, f.carts.carts, "u1")
}

func TestCreate_EmptyOrMissingCart(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), CreateRequest{UserID: "u1", AddressID: "a1", PaymentMethod: MethodGateway})
	require.ErrorIs(t, err, ErrEmptyCart)

	f.carts.carts["u1"] = &cart.Cart{UserID: "u1"}
	_, err = f.svc.Create(context.Background(), CreateRequest{UserID: "u1", AddressID: "a1", PaymentMethod: MethodGateway})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreate_UserNotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), CreateRequest{UserID: "ghost", AddressID: "a1", PaymentMethod: MethodGateway})
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestCreate_AddressNotFound(t *testing.T) {
	f := newFixture(newTestProduct("p1", "10.00", ""))
	f.carts.carts["u1"] = &cart.Cart{UserID: "u1", Items: []cart.Item{{ProductID: "p1", Quantity: 1}}}

	_, err := f.svc.Create(context.Background(), CreateRequest{UserID: "u1", AddressID: "nope", PaymentMethod: MethodGateway})
	require.ErrorIs(t, err, user.ErrAddressNotFound)
}

func TestCreate_ProductGone(t *testing.T) {
	f := newFixture()
	f.carts.carts["u1"] = &cart.Cart{UserID: "u1", Items: []cart.Item{{ProductID: "vanished", Quantity: 1}}}

	_, err := f.svc.Create(context.Background(), CreateRequest{UserID: "u1", AddressID: "a1", PaymentMethod: MethodGateway})

	var pnf *ProductNotFoundError
	require.ErrorAs(t, err, &pnf)
	assert.Equal(t, "vanished", pnf.ProductID)
}

func TestParseEnums(t *testing.T) {
	_, err := ParsePaymentMethod("bitcoin")
	var inv *InvalidEnumError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "paymentMethod", inv.Field)

	_, err = ParseStatus("bogus")
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "orderStatus", inv.Field)

	_, err = ParsePaymentStatus("maybe")
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "paymentStatus", inv.Field)

	st, err := ParseStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, st)
}
