package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID            string
	Name          string
	Category      string
	Price         decimal.Decimal
	DiscountPrice decimal.Decimal
	Stock         int
}

// EffectivePrice returns the price a buyer pays right now: the discount
// price when one is set, the list price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice.IsPositive() {
		return p.DiscountPrice
	}
	return p.Price
}

// Repository defines read operations for the product catalog.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}
