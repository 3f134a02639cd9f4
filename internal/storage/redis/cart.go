// Package redis implements the cart repository on Redis. Carts are
// per-user JSON documents with a TTL; an abandoned cart eventually
// expires on its own.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/otakumart/checkout-api/internal/domain/cart"
)

var _ cart.Repository = (*CartStore)(nil)

const cartKeyFormat = "cart:%s"

// CartStore implements cart.Repository on a Redis client.
type CartStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCartStore returns a CartStore. ttl bounds how long an untouched cart
// survives.
func NewCartStore(rdb *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{rdb: rdb, ttl: ttl}
}

func cartKey(userID string) string {
	return fmt.Sprintf(cartKeyFormat, userID)
}

// Get fetches the user's active cart.
func (s *CartStore) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	raw, err := s.rdb.Get(ctx, cartKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("getting cart for user %q: %w", userID, err)
	}

	var c cart.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("unmarshaling cart for user %q: %w", userID, err)
	}
	return &c, nil
}

// Put stores the cart document and refreshes its TTL.
func (s *CartStore) Put(ctx context.Context, c *cart.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling cart for user %q: %w", c.UserID, err)
	}
	if err := s.rdb.Set(ctx, cartKey(c.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing cart for user %q: %w", c.UserID, err)
	}
	return nil
}

// Delete removes the user's cart. Deleting a missing cart is a no-op, which
// keeps repeated payment verification harmless.
func (s *CartStore) Delete(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("deleting cart for user %q: %w", userID, err)
	}
	return nil
}
