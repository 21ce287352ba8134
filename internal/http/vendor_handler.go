package http

import (
	"net/http"

	"github.com/fjod/go_marketplace/internal/analytics"
	"github.com/fjod/go_marketplace/internal/vendor"
)

// VendorHandler serves the vendor dashboard: product management and the
// sales and rating statistics built on top of it.
type VendorHandler struct {
	vendor    *vendor.Service
	analytics *analytics.Service
}

func NewVendorHandler(v *vendor.Service, a *analytics.Service) *VendorHandler {
	return &VendorHandler{vendor: v, analytics: a}
}

func (h *VendorHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var in vendor.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.vendor.AddProduct(r.Context(), getUserIDFromContext(r.Context()), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, p)
}

func (h *VendorHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.vendor.ListProducts(r.Context(), getUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nonNil(products))
}

func (h *VendorHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.vendor.GetProduct(r.Context(), getUserIDFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, p)
}

func (h *VendorHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var upd vendor.ProductUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}
	p, err := h.vendor.UpdateProduct(r.Context(), getUserIDFromContext(r.Context()), id, upd)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, p)
}

func (h *VendorHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.vendor.DeleteProduct(r.Context(), getUserIDFromContext(r.Context()), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, MessageResponse{Message: "product deleted"})
}

func (h *VendorHandler) AddImages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var urls []string
	if !decodeJSON(w, r, &urls) {
		return
	}
	images, err := h.vendor.AddImages(r.Context(), getUserIDFromContext(r.Context()), id, urls)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, images)
}

func (h *VendorHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	images, err := h.vendor.ListImages(r.Context(), getUserIDFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nonNil(images))
}

func (h *VendorHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(w, r, "imageId")
	if !ok {
		return
	}
	if err := h.vendor.DeleteImage(r.Context(), getUserIDFromContext(r.Context()), id, imageID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, MessageResponse{Message: "image deleted"})
}

func (h *VendorHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ratings, err := h.vendor.ListReviews(r.Context(), getUserIDFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nonNil(ratings))
}

func (h *VendorHandler) ProductStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	stats, err := h.analytics.ProductStats(r.Context(), getUserIDFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, stats)
}

func (h *VendorHandler) Sales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.analytics.VendorSales(r.Context(), getUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sales)
}

func (h *VendorHandler) SalesStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.VendorSalesStats(r.Context(), getUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, stats)
}

func (h *VendorHandler) SaleDetail(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}
	detail, err := h.analytics.VendorSaleDetail(r.Context(), getUserIDFromContext(r.Context()), orderID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, detail)
}
