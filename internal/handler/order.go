package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/otakumart/checkout-api/internal/auth"
	"github.com/otakumart/checkout-api/internal/domain/order"
	"github.com/otakumart/checkout-api/internal/domain/payment"
)

type createOrderRequest struct {
	AddressID     string `json:"addressId"`
	PaymentMethod string `json:"paymentMethod"`
}

type orderView struct {
	ID               string        `json:"id"`
	Items            []order.Item  `json:"items"`
	ShippingAddress  order.Address `json:"shippingAddress"`
	PaymentMethod    string        `json:"paymentMethod"`
	PaymentStatus    string        `json:"paymentStatus"`
	OrderStatus      string        `json:"orderStatus"`
	TotalAmount      string        `json:"totalAmount"`
	GatewayOrderID   string        `json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string        `json:"gatewayPaymentId,omitempty"`
	CreatedAt        string        `json:"createdAt"`
	UpdatedAt        string        `json:"updatedAt"`
}

func viewOrder(o *order.Order) orderView {
	return orderView{
		ID:               o.ID,
		Items:            o.Items,
		ShippingAddress:  o.ShippingAddress,
		PaymentMethod:    string(o.PaymentMethod),
		PaymentStatus:    string(o.PaymentStatus),
		OrderStatus:      string(o.Status),
		TotalAmount:      o.TotalAmount.StringFixed(2),
		GatewayOrderID:   o.GatewayOrderID,
		GatewayPaymentID: o.GatewayPaymentID,
		CreatedAt:        o.CreatedAt.Format(timeFormat),
		UpdatedAt:        o.UpdatedAt.Format(timeFormat),
	}
}

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// createOrder snapshots the caller's cart into a new pending order.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AddressID == "" || req.PaymentMethod == "" {
		fail(w, http.StatusBadRequest, "addressId and paymentMethod are required")
		return
	}

	method, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		respondError(w, r, err)
		return
	}

	o, err := h.orderSvc.Create(r.Context(), order.CreateRequest{
		UserID:        userID,
		AddressID:     req.AddressID,
		PaymentMethod: method,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	ok(w, http.StatusCreated, map[string]any{
		"order": map[string]any{
			"id":            o.ID,
			"totalAmount":   o.TotalAmount.StringFixed(2),
			"paymentMethod": string(o.PaymentMethod),
		},
	})
}

type mintGatewayRequest struct {
	OrderID string `json:"orderId"`
}

// mintGatewayOrder creates (or returns) the processor-side order handle.
func (h *Handler) mintGatewayOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req mintGatewayRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.OrderID == "" {
		fail(w, http.StatusBadRequest, "orderId is required")
		return
	}

	res, err := h.payments.MintGatewayOrder(r.Context(), userID, req.OrderID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ok(w, http.StatusOK, map[string]any{
		"gatewayOrderId": res.GatewayOrderID,
		"amount":         res.AmountMinor,
		"orderId":        req.OrderID,
	})
}

type verifyPaymentRequest struct {
	OrderID          string `json:"orderId"`
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Signature        string `json:"signature"`
}

// verifyPayment validates the processor callback and flips the order to
// paid. Field presence is checked before any cryptographic work.
func (h *Handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req verifyPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.GatewayOrderID == "" || req.GatewayPaymentID == "" || req.Signature == "" {
		fail(w, http.StatusBadRequest, "gatewayOrderId, gatewayPaymentId and signature are required")
		return
	}
	if req.OrderID == "" {
		fail(w, http.StatusBadRequest, "orderId is required")
		return
	}

	o, err := h.payments.Verify(r.Context(), userID, payment.VerifyRequest{
		OrderID:          req.OrderID,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	ok(w, http.StatusOK, map[string]any{
		"order": map[string]any{
			"id":            o.ID,
			"orderStatus":   string(o.Status),
			"paymentStatus": string(o.PaymentStatus),
		},
	})
}

// listMyOrders returns the caller's orders, newest first.
func (h *Handler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	list, err := h.orders.ListByUser(r.Context(), userID)
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

// getOrder returns one order to its owner or to an admin.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	orderID := chi.URLParam(r, "id")

	o, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if o.UserID != userID {
		u, err := h.users.GetByID(r.Context(), userID)
		if err != nil || !u.IsAdmin() {
			fail(w, http.StatusForbidden, "not your order")
			return
		}
	}

	ok(w, http.StatusOK, map[string]any{"order": viewOrder(o)})
}
