package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxCartItemQuantity caps a single cart line, including merged adds.
const MaxCartItemQuantity = 10000

// CartItem is one line of a buyer's cart. There is at most one item per
// (buyer, product) pair.
type CartItem struct {
	ID        int64     `json:"id"`
	BuyerID   int64     `json:"buyer_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckoutLine is a cart item joined with the live product price at the
// moment checkout read it.
type CheckoutLine struct {
	CartItemID   int64
	ProductID    int64
	ProductTitle string
	Quantity     int
	UnitPrice    decimal.Decimal
}

func (l CheckoutLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
