package models

import "time"

// Product is the authoritative catalog record. Basket items carry a
// denormalized copy of it; the catalog price always wins over the copy.
type Product struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description"`
	Price       float64 `db:"price" json:"price"`
	PictureURL  string  `db:"picture_url" json:"picture_url"`
	InStock     int     `db:"in_stock" json:"in_stock"`
	BrandID     string  `db:"brand_id" json:"brand_id"`
	TypeID      string  `db:"type_id" json:"type_id"`
}

// DeliveryMethod is a shipping option with a fixed price
type DeliveryMethod struct {
	ID           string  `db:"id" json:"id"`
	ShortName    string  `db:"short_name" json:"short_name"`
	DeliveryTime string  `db:"delivery_time" json:"delivery_time"`
	Description  string  `db:"description" json:"description"`
	Price        float64 `db:"price" json:"price"`
}

// Basket is a client-owned, mutable set of selected products. It lives in
// the basket store until checkout consumes it.
type Basket struct {
	ID               string       `json:"id"`
	Items            []BasketItem `json:"items"`
	DeliveryMethodID string       `json:"delivery_method_id,omitempty"`
	PaymentIntentID  string       `json:"payment_intent_id,omitempty"`
	ClientSecret     string       `json:"client_secret,omitempty"`
}

// BasketItem is a snapshot of a product at the time it was added. Price is
// advisory; SyncPaymentIntent is the only path allowed to rewrite it.
type BasketItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	PictureURL  string  `json:"picture_url"`
	Brand       string  `json:"brand"`
	Type        string  `json:"type"`
}

// Order is an immutable record of a completed purchase. Subtotal and Total
// are fixed at creation and never recomputed; only Status changes afterwards.
type Order struct {
	ID               string    `db:"id" json:"id"`
	BuyerEmail       string    `db:"buyer_email" json:"buyer_email"`
	OrderDate        time.Time `db:"order_date" json:"order_date"`
	DeliveryMethodID string    `db:"delivery_method_id" json:"delivery_method_id"`
	Subtotal         float64   `db:"subtotal" json:"subtotal"`
	Total            float64   `db:"total" json:"total"`
	Status           string    `db:"status" json:"status"`
	PaymentIntentID  string    `db:"payment_intent_id" json:"payment_intent_id,omitempty"`
	PaymentID        string    `db:"payment_id" json:"payment_id"`
}

// OrderItem is a line of an order, priced at purchase time
type OrderItem struct {
	OrderID   string  `db:"order_id" json:"-"`
	ProductID string  `db:"product_id" json:"product_id"`
	Price     float64 `db:"price" json:"price"`
	Quantity  int     `db:"quantity" json:"quantity"`
}

// Payment records the charge attempt backing an order. Written once,
// never mutated.
type Payment struct {
	ID              string    `db:"id" json:"id"`
	PaymentIntentID string    `db:"payment_intent_id" json:"payment_intent_id,omitempty"`
	Amount          float64   `db:"amount" json:"amount"`
	Currency        string    `db:"currency" json:"currency"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Order statuses
const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

var validOrderStatuses = map[string]struct{}{
	OrderStatusPending:    {},
	OrderStatusProcessing: {},
	OrderStatusShipped:    {},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// ValidOrderStatus reports whether status belongs to the closed label set.
// Membership is the only check; edge legality between labels is not enforced.
func ValidOrderStatus(status string) bool {
	_, ok := validOrderStatuses[status]
	return ok
}

// OrderToReturn is the external representation of an order, with the
// delivery price resolved
type OrderToReturn struct {
	ID               string      `json:"id"`
	BuyerEmail       string      `json:"buyer_email"`
	OrderDate        time.Time   `json:"order_date"`
	DeliveryMethodID string      `json:"delivery_method_id"`
	ShippingPrice    float64     `json:"shipping_price"`
	OrderItems       []OrderItem `json:"order_items"`
	Subtotal         float64     `json:"subtotal"`
	Total            float64     `json:"total"`
	Status           string      `json:"status"`
	PaymentIntentID  string      `json:"payment_intent_id,omitempty"`
	PaymentID        string      `json:"payment_id"`
}
