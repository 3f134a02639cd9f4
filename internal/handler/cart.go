package handler

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/otakumart/checkout-api/internal/auth"
	"github.com/otakumart/checkout-api/internal/domain/cart"
	"github.com/otakumart/checkout-api/internal/domain/product"
)

// getCart returns the caller's active cart. A user who never added
// anything gets an empty cart rather than a 404.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	c, err := h.carts.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			c = &cart.Cart{UserID: userID, Items: []cart.Item{}}
		} else {
			respondError(w, r, err)
			return
		}
	}
	ok(w, http.StatusOK, map[string]any{"cart": c})
}

type putCartRequest struct {
	Items []cart.Item `json:"items"`
}

// putCart replaces the caller's cart. Quantities must be at least 1 and
// every product must exist in the catalog.
func (h *Handler) putCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req putCartRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.ProductID == "" {
			fail(w, http.StatusBadRequest, "items[].productId is required")
			return
		}
		if item.Quantity < 1 {
			fail(w, http.StatusBadRequest, fmt.Sprintf("quantity must be at least 1 for product %s", item.ProductID))
			return
		}
		ids[i] = item.ProductID
	}

	if len(ids) > 0 {
		fetched, err := h.products.GetByIDs(r.Context(), ids)
		if err != nil {
			respondError(w, r, err)
			return
		}
		known := make(map[string]struct{}, len(fetched))
		for _, p := range fetched {
			known[p.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				respondError(w, r, fmt.Errorf("%s: %w", id, product.ErrNotFound))
				return
			}
		}
	}

	c := &cart.Cart{UserID: userID, Items: req.Items}
	if err := h.carts.Put(r.Context(), c); err != nil {
		respondError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"cart": c})
}
