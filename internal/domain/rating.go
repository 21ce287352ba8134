package domain

import "time"

const (
	MinStars         = 1
	MaxStars         = 5
	MaxCommentLength = 500
)

type Rating struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	BuyerID   int64     `json:"buyer_id"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
