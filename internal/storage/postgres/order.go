package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/otakumart/checkout-api/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Items
// and the shipping address are serialized to JSONB.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, user_id, items, shipping_address, payment_method,
	payment_status, order_status, total_amount, gateway_order_id,
	gateway_payment_id, created_at, updated_at`

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}
	addrJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}

	_, err = r.pool.Exec(ctx, `INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		o.ID, o.UserID, itemsJSON, addrJSON, o.PaymentMethod,
		o.PaymentStatus, o.Status, o.TotalAmount, o.GatewayOrderID,
		o.GatewayPaymentID, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID fetches one order by id.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return o, nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return collectOrders(rows)
}

// List returns all orders, newest first. Admin surface only.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return collectOrders(rows)
}

// SetGatewayOrder attaches the processor-side order id.
func (r *OrderRepository) SetGatewayOrder(ctx context.Context, id, gatewayOrderID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET gateway_order_id = $2, updated_at = now() WHERE id = $1`,
		id, gatewayOrderID)
	if err != nil {
		return fmt.Errorf("setting gateway order on %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// MarkPaid flips payment_status to paid and records the processor payment
// id. Fulfillment status is left alone.
func (r *OrderRepository) MarkPaid(ctx context.Context, id, gatewayPaymentID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET payment_status = $2, gateway_payment_id = $3, updated_at = now()
		WHERE id = $1`,
		id, order.PaymentPaid, gatewayPaymentID)
	if err != nil {
		return fmt.Errorf("marking order %q paid: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// UpdateStatuses applies a partial admin status update; nil patch fields
// keep their stored values.
func (r *OrderRepository) UpdateStatuses(ctx context.Context, id string, patch order.StatusPatch) (*order.Order, error) {
	var orderStatus, paymentStatus *string
	if patch.Status != nil {
		s := string(*patch.Status)
		orderStatus = &s
	}
	if patch.PaymentStatus != nil {
		s := string(*patch.PaymentStatus)
		paymentStatus = &s
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE orders SET
			order_status = COALESCE($2, order_status),
			payment_status = COALESCE($3, payment_status),
			updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		id, orderStatus, paymentStatus)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("updating order %q statuses: %w", id, err)
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o         order.Order
		itemsJSON []byte
		addrJSON  []byte
	)
	err := row.Scan(
		&o.ID, &o.UserID, &itemsJSON, &addrJSON, &o.PaymentMethod,
		&o.PaymentStatus, &o.Status, &o.TotalAmount, &o.GatewayOrderID,
		&o.GatewayPaymentID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshaling order items: %w", err)
	}
	if err := json.Unmarshal(addrJSON, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshaling shipping address: %w", err)
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]order.Order, error) {
	defer rows.Close()
	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
