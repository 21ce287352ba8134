package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Product is a catalog entry owned by a vendor. Rating and RatingCount are
// derived from the product's ratings and recomputed whenever one is added.
type Product struct {
	ID                int64           `json:"id"`
	ASIN              string          `json:"asin"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	QuantityAvailable int             `json:"quantity_available"`
	CategoryID        *int64          `json:"category_id,omitempty"`
	VendorID          int64           `json:"vendor_id"`
	Rating            float64         `json:"rating"`
	RatingCount       int64           `json:"rating_count"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type ProductImage struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"product_id"`
	URL          string `json:"image_url"`
	Primary      bool   `json:"is_primary"`
	DisplayOrder int    `json:"display_order"`
}
