package events

import "time"

type Event struct {
	EventID   string         `json:"event_id"`
	OrderID   uint           `json:"order_id"`
	CreatedAt time.Time      `json:"created_at"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
}

const (
	EventOrderCheckedOut = "order.checked_out"
	EventPaymentApproved = "payment.approved"
	EventOrderFinalized  = "order.finalized"
)
