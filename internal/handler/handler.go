// Package handler exposes the storefront checkout API over HTTP.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/otakumart/checkout-api/internal/domain/cart"
	"github.com/otakumart/checkout-api/internal/domain/order"
	"github.com/otakumart/checkout-api/internal/domain/payment"
	"github.com/otakumart/checkout-api/internal/domain/product"
	"github.com/otakumart/checkout-api/internal/domain/user"
)

// Handler wires HTTP routes to the domain services. All request parsing and
// status-code mapping lives here; domain packages never see HTTP.
type Handler struct {
	users    user.Repository
	products product.Repository
	carts    cart.Repository
	orders   order.Repository
	orderSvc *order.Service
	payments *payment.Service
}

// New constructs a Handler with the required domain dependencies.
func New(
	users user.Repository,
	products product.Repository,
	carts cart.Repository,
	orders order.Repository,
	orderSvc *order.Service,
	payments *payment.Service,
) *Handler {
	return &Handler{
		users:    users,
		products: products,
		carts:    carts,
		orders:   orders,
		orderSvc: orderSvc,
		payments: payments,
	}
}

// Register mounts all API routes under /api. authenticate is the bearer
// token middleware; admin elevation is checked per-handler against the
// user's stored role.
func (h *Handler) Register(r chi.Router, authenticate func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/orders", h.createOrder)
			r.Post("/orders/gateway", h.mintGatewayOrder)
			r.Post("/orders/verify", h.verifyPayment)
			r.Get("/orders", h.listMyOrders)
			r.Get("/orders/{id}", h.getOrder)

			r.Get("/cart", h.getCart)
			r.Put("/cart", h.putCart)

			r.Get("/admin/orders", h.adminListOrders)
			r.Patch("/admin/orders/{id}", h.adminUpdateOrder)
		})
	})
}
