package http

import (
	"net/http"

	"github.com/fjod/go_marketplace/internal/reviews"
)

type ReviewsHandler struct {
	reviews *reviews.Service
}

func NewReviewsHandler(svc *reviews.Service) *ReviewsHandler {
	return &ReviewsHandler{reviews: svc}
}

type ReviewRequestDTO struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

func (h *ReviewsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ReviewRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	rating, err := h.reviews.Submit(r.Context(), getUserIDFromContext(r.Context()), productID, req.Stars, req.Comment)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, rating)
}

func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ratings, err := h.reviews.List(r.Context(), productID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nonNil(ratings))
}
