package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced        = "order_placed"
	EventOrderCancelled     = "order_cancelled"
	EventOrderStatusChanged = "order_status_changed"
)

// OrderEvent is the Kafka message published on every order lifecycle change.
type OrderEvent struct {
	Type      string          `json:"type"`
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	Status    OrderStatus     `json:"status"`
	Items     []OrderLine     `json:"items,omitempty"`
	Total     decimal.Decimal `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewOrderEvent(eventType string, order *Order) OrderEvent {
	return OrderEvent{
		Type:      eventType,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Status:    order.Status,
		Items:     order.Items,
		Total:     order.Total,
		Timestamp: time.Now().UTC(),
	}
}
