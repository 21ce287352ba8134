package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_marketplace/internal/analytics"
	"github.com/fjod/go_marketplace/internal/cart"
	"github.com/fjod/go_marketplace/internal/catalog"
	"github.com/fjod/go_marketplace/internal/checkout"
	"github.com/fjod/go_marketplace/internal/reviews"
	"github.com/fjod/go_marketplace/internal/vendor"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Services struct {
	Catalog   *catalog.Service
	Cart      *cart.Service
	Checkout  *checkout.Service
	Reviews   *reviews.Service
	Vendor    *vendor.Service
	Analytics *analytics.Service
}

func NewRouter(s Services, requestTimeout time.Duration) http.Handler {
	catalogHandler := NewCatalogHandler(s.Catalog)
	cartHandler := NewCartHandler(s.Cart)
	ordersHandler := NewOrdersHandler(s.Checkout)
	reviewsHandler := NewReviewsHandler(s.Reviews)
	vendorHandler := NewVendorHandler(s.Vendor, s.Analytics)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/categories", catalogHandler.ListCategories)
		r.Get("/categories/{id}", catalogHandler.GetCategory)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.ListProducts)
			r.Get("/search", catalogHandler.Search)
			r.Get("/available", catalogHandler.ListAvailable)
			r.Get("/category/{categoryId}", catalogHandler.ListByCategory)
			r.Get("/{id}", catalogHandler.GetProduct)
			r.Get("/{id}/reviews", reviewsHandler.List)
			r.With(CallerIdentityMiddleware).Post("/{id}/reviews", reviewsHandler.Submit)
		})

		r.Group(func(r chi.Router) {
			r.Use(CallerIdentityMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/add/{productId}", cartHandler.AddItem)
				r.Put("/{cartItemId}", cartHandler.UpdateQuantity)
				r.Delete("/{cartItemId}", cartHandler.RemoveItem)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", ordersHandler.Checkout)
				r.Get("/", ordersHandler.ListOrders)
				r.Get("/{id}", ordersHandler.GetOrder)
			})

			r.Route("/vendor", func(r chi.Router) {
				r.Route("/products", func(r chi.Router) {
					r.Post("/", vendorHandler.AddProduct)
					r.Get("/", vendorHandler.ListProducts)
					r.Get("/{id}", vendorHandler.GetProduct)
					r.Put("/{id}", vendorHandler.UpdateProduct)
					r.Delete("/{id}", vendorHandler.DeleteProduct)
					r.Get("/{id}/stats", vendorHandler.ProductStats)
					r.Get("/{id}/reviews", vendorHandler.ListReviews)
					r.Get("/{id}/images", vendorHandler.ListImages)
					r.Post("/{id}/images", vendorHandler.AddImages)
					r.Delete("/{id}/images/{imageId}", vendorHandler.DeleteImage)
				})
				r.Get("/sales", vendorHandler.Sales)
				r.Get("/sales/stats", vendorHandler.SalesStats)
				r.Get("/sales/{orderId}", vendorHandler.SaleDetail)
			})
		})
	})

	return r
}
