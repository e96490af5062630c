package domain

import (
	"fmt"
	"time"
)

const (
	EventOrderPlaced    = "order_placed"
	EventOrderCancelled = "order_cancelled"
)

// OrderEvent is the subset of the order-svc event this service reads.
type OrderEvent struct {
	Type      string      `json:"type"`
	OrderID   string      `json:"order_id"`
	UserID    string      `json:"user_id"`
	Status    string      `json:"status"`
	Items     []EventLine `json:"items"`
	Timestamp time.Time   `json:"timestamp"`
}

type EventLine struct {
	FoodID   string `json:"food"`
	Quantity int    `json:"quantity"`
}

// Quantities sums quantities per food, skipping malformed lines.
func (e OrderEvent) Quantities() map[string]int {
	totals := make(map[string]int, len(e.Items))
	for _, line := range e.Items {
		if line.FoodID == "" || line.Quantity < 1 {
			continue
		}
		totals[line.FoodID] += line.Quantity
	}
	return totals
}

// DedupKey identifies one handled event so redelivery does not count twice.
func (e OrderEvent) DedupKey() string {
	return fmt.Sprintf("agg:processed:%s:%s", e.Type, e.OrderID)
}

const (
	PopularAllTimeKey     = "popular:alltime"
	popularDailyKeyPrefix = "popular:daily:"
)

func PopularDailyKey(day time.Time) string {
	return popularDailyKeyPrefix + day.UTC().Format("2006-01-02")
}
