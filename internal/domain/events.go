package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderCreatedEvent struct {
	OrderID   string    `json:"order_id"`
	WaiterID  string    `json:"waiter_id"`
	TableID   string    `json:"table_id"`
	Timestamp time.Time `json:"timestamp"`
}

type OrderClosedEvent struct {
	OrderID    string          `json:"order_id"`
	WaiterID   string          `json:"waiter_id"`
	TableID    string          `json:"table_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Duration   time.Duration   `json:"duration_ns"`
	ItemCount  int             `json:"item_count"`
	Timestamp  time.Time       `json:"timestamp"`
}
