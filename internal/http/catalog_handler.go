package http

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/go_marketplace/internal/catalog"
	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/shopspring/decimal"
)

type CatalogHandler struct {
	catalog *catalog.Service
}

func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: svc}
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nonNil(products))
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, p)
}

func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSearchFilter(r.URL.Query())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	products, err := h.catalog.Search(r.Context(), filter)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nonNil(products))
}

func (h *CatalogHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListAvailable(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nonNil(products))
}

func (h *CatalogHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "categoryId")
	if !ok {
		return
	}
	products, err := h.catalog.ListByCategory(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nonNil(products))
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, nonNil(categories))
}

func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, c)
}

// parseSearchFilter reads the optional search parameters. A parameter that is
// present but unparsable is a validation error.
func parseSearchFilter(q url.Values) (domain.SearchFilter, error) {
	var f domain.SearchFilter

	if v := q.Get("categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, domain.Invalid("categoryId must be an integer")
		}
		f.CategoryID = &id
	}
	if q.Has("keyword") {
		kw := q.Get("keyword")
		f.Keyword = &kw
	}
	if v := q.Get("minPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, domain.Invalid("minPrice must be a number")
		}
		f.MinPrice = &d
	}
	if v := q.Get("maxPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, domain.Invalid("maxPrice must be a number")
		}
		f.MaxPrice = &d
	}
	if v := q.Get("minRating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, domain.Invalid("minRating must be a number")
		}
		f.MinRating = &rating
	}
	return f, nil
}

// nonNil makes empty results encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
