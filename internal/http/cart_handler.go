package http

import (
	"net/http"
	"strconv"

	"github.com/fjod/go_marketplace/internal/cart"
)

type CartHandler struct {
	cart *cart.Service
}

func NewCartHandler(svc *cart.Service) *CartHandler {
	return &CartHandler{cart: svc}
}

// quantityParam reads ?quantity=, falling back to def when absent. def < 0
// makes the parameter required.
func quantityParam(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	v := r.URL.Query().Get("quantity")
	if v == "" && def >= 0 {
		return def, true
	}
	q, err := strconv.Atoi(v)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_quantity", "quantity must be an integer")
		return 0, false
	}
	return q, true
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())

	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	quantity, ok := quantityParam(w, r, 1)
	if !ok {
		return
	}

	item, err := h.cart.Add(r.Context(), userID, productID, quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, item)
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.cart.List(r.Context(), getUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nonNil(items))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())

	itemID, ok := pathID(w, r, "cartItemId")
	if !ok {
		return
	}
	quantity, ok := quantityParam(w, r, -1)
	if !ok {
		return
	}

	item, err := h.cart.UpdateQuantity(r.Context(), userID, itemID, quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())

	itemID, ok := pathID(w, r, "cartItemId")
	if !ok {
		return
	}

	if err := h.cart.Remove(r.Context(), userID, itemID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, MessageResponse{Message: "item removed from cart"})
}
