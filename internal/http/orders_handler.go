package http

import (
	"net/http"

	"github.com/fjod/go_marketplace/internal/checkout"
)

type OrdersHandler struct {
	checkout *checkout.Service
}

func NewOrdersHandler(svc *checkout.Service) *OrdersHandler {
	return &OrdersHandler{checkout: svc}
}

func (h *OrdersHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.Checkout(r.Context(), getUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, order)
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.checkout.ListOrders(r.Context(), getUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nonNil(orders))
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.checkout.GetOrder(r.Context(), getUserIDFromContext(r.Context()), orderID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, order)
}
