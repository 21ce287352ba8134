package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStats struct {
	ProductID     int64   `json:"product_id"`
	ProductTitle  string  `json:"product_title"`
	TotalReviews  int64   `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
	FiveStar      int64   `json:"five_star_count"`
	FourStar      int64   `json:"four_star_count"`
	ThreeStar     int64   `json:"three_star_count"`
	TwoStar       int64   `json:"two_star_count"`
	OneStar       int64   `json:"one_star_count"`
}

// SaleRecord is one order item of a vendor's product, denormalized with the
// order and buyer it belongs to.
type SaleRecord struct {
	OrderItemID  int64           `json:"order_item_id"`
	OrderID      int64           `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
	OrderedAt    time.Time       `json:"ordered_at"`
	BuyerID      int64           `json:"buyer_id"`
	BuyerName    string          `json:"buyer_name"`
}

type TopProduct struct {
	ProductID    int64           `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type SalesStats struct {
	TotalOrders       int             `json:"total_orders"`
	TotalProductsSold int             `json:"total_products_sold"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	TopProducts       []TopProduct    `json:"top_products"`
}

type SaleDetail struct {
	OrderID   int64           `json:"order_id"`
	OrderedAt time.Time       `json:"ordered_at"`
	BuyerID   int64           `json:"buyer_id"`
	BuyerName string          `json:"buyer_name"`
	Total     decimal.Decimal `json:"total"`
	Items     []SaleRecord    `json:"items"`
}
