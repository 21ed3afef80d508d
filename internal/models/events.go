package models

import "time"

// Event types
const (
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderStatusChangedEvent published after an order status mutation has
// committed. The notification worker turns it into a buyer email.
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    string `json:"order_id"`
	BuyerEmail string `json:"buyer_email"`
	NewStatus  string `json:"new_status"`
}
