package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const EventOrderCreated = "order.created"

type OutboxEvent struct {
	ID          uuid.UUID
	AggregateID string
	EventType   string
	Payload     json.RawMessage
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// OrderCreatedPayload is published once per successful checkout.
type OrderCreatedPayload struct {
	OrderID     int64       `json:"order_id"`
	BuyerID     int64       `json:"buyer_id"`
	TotalAmount string      `json:"total_amount"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"created_at"`
}
