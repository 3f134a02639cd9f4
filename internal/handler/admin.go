package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/otakumart/checkout-api/internal/auth"
	"github.com/otakumart/checkout-api/internal/domain/order"
)

// requireAdmin loads the caller and checks the administrator role. It
// writes the 403 itself and reports whether the caller may proceed.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	userID, _ := auth.UserIDFromContext(r.Context())
	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil || !u.IsAdmin() {
		fail(w, http.StatusForbidden, "admin access required")
		return false
	}
	return true
}

// adminListOrders returns every order, newest first.
func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	list, err := h.orders.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	views := make([]orderView, len(list))
	for i := range list {
		views[i] = viewOrder(&list[i])
	}
	ok(w, http.StatusOK, map[string]any{"orders": views})
}

type adminUpdateRequest struct {
	OrderStatus   *string `json:"orderStatus"`
	PaymentStatus *string `json:"paymentStatus"`
}

// adminUpdateOrder applies a partial status update. Values are validated
// against the enums, but no transition-adjacency rules are enforced: admin
// updates are trusted.
func (h *Handler) adminUpdateOrder(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req adminUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.OrderStatus == nil && req.PaymentStatus == nil {
		fail(w, http.StatusBadRequest, "orderStatus or paymentStatus is required")
		return
	}

	var patch order.StatusPatch
	if req.OrderStatus != nil {
		st, err := order.ParseStatus(*req.OrderStatus)
		if err != nil {
			respondError(w, r, err)
			return
		}
		patch.Status = &st
	}
	if req.PaymentStatus != nil {
		ps, err := order.ParsePaymentStatus(*req.PaymentStatus)
		if err != nil {
			respondError(w, r, err)
			return
		}
		patch.PaymentStatus = &ps
	}

	o, err := h.orders.UpdateStatuses(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"order": viewOrder(o)})
}
