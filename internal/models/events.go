package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published when checkout commits
type OrderPlacedEvent struct {
	BaseEvent
	OrderID       int64           `json:"order_id"`
	AccountID     int64           `json:"account_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent published when a seller or customer moves an order
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID       int64  `json:"order_id"`
	AccountID     int64  `json:"account_id"`
	CustomerEmail string `json:"customer_email"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}
