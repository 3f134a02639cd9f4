package cart

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when the user has no active cart.
var ErrNotFound = errors.New("cart not found")

// Item is a single cart line: what the user wants and how many. Prices are
// deliberately absent; the cart always reprices from the live catalog and
// only an order snapshot freezes them.
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart is the user's active cart document.
type Cart struct {
	UserID string `json:"userId"`
	Items  []Item `json:"items"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Repository defines persistence for per-user cart documents. Delete on a
// missing cart is a no-op so a repeated payment verification stays
// idempotent.
type Repository interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Put(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, userID string) error
}
