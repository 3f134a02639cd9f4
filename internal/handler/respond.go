package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/otakumart/checkout-api/internal/domain/cart"
	"github.com/otakumart/checkout-api/internal/domain/order"
	"github.com/otakumart/checkout-api/internal/domain/payment"
	"github.com/otakumart/checkout-api/internal/domain/product"
	"github.com/otakumart/checkout-api/internal/domain/user"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// ok writes a success envelope. extra is merged in beside "success": true.
func ok(w http.ResponseWriter, code int, extra map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, code, body)
}

func fail(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]any{"success": false, "message": message})
}

// respondError maps a domain error to its status code and client
// message. Store and other unexpected errors are logged with full detail
// server-side and surfaced only as a generic internal error.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		enumErr *order.InvalidEnumError
		pnfErr  *order.ProductNotFoundError
		upErr   *payment.UpstreamError
	)

	switch {
	case errors.Is(err, order.ErrEmptyCart):
		fail(w, http.StatusBadRequest, "cart is empty")
	case errors.As(err, &enumErr):
		fail(w, http.StatusBadRequest, enumErr.Error())
	case errors.As(err, &pnfErr):
		fail(w, http.StatusBadRequest, pnfErr.Error())
	case errors.Is(err, product.ErrNotFound):
		fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, payment.ErrBadSignature):
		fail(w, http.StatusBadRequest, "payment signature verification failed")
	case errors.Is(err, user.ErrNotFound):
		fail(w, http.StatusNotFound, "user not found")
	case errors.Is(err, user.ErrAddressNotFound):
		fail(w, http.StatusNotFound, "address not found")
	case errors.Is(err, order.ErrNotFound):
		fail(w, http.StatusNotFound, "order not found")
	case errors.Is(err, cart.ErrNotFound):
		fail(w, http.StatusNotFound, "cart not found")
	case errors.Is(err, payment.ErrNotOwner):
		fail(w, http.StatusForbidden, "not your order")
	case errors.Is(err, payment.ErrNotConfigured):
		fail(w, http.StatusInternalServerError, "payment gateway is not configured")
	case errors.As(err, &upErr):
		fail(w, http.StatusInternalServerError, upErr.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		fail(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody parses a JSON request body into dst, rejecting unknown or
// malformed input up front.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
