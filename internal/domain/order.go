package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusOpen       OrderStatus = "OPEN"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusClosed     OrderStatus = "CLOSED"
)

// ParseOrderStatus validates a status string coming from the HTTP layer.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusOpen, OrderStatusInProgress, OrderStatusClosed:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

type OrderItem struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	DishID   string `json:"dish_id"`
	Quantity int    `json:"quantity"`
	Ready    bool   `json:"ready"`
}

// Order is a customer's tab at a table. CreatedAt is set once at creation,
// ProcessingStartedAt at most once on the first transition into processing,
// and Duration is non-nil only while the order is closed.
type Order struct {
	ID                  string          `json:"id"`
	UserID              string          `json:"user_id"`
	TableID             string          `json:"table_id"`
	Items               []OrderItem     `json:"items"`
	Status              OrderStatus     `json:"status"`
	ReadyToServe        bool            `json:"ready_to_serve"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	CreatedAt           time.Time       `json:"created_at"`
	ProcessingStartedAt *time.Time      `json:"processing_started_at,omitempty"`
	Duration            *time.Duration  `json:"duration_ns,omitempty"`
}

// ServeStatus is the minimal projection a kitchen or waiter dashboard polls.
type ServeStatus struct {
	OrderID      string      `json:"id"`
	Status       OrderStatus `json:"status"`
	ReadyToServe bool        `json:"ready_to_serve"`
	TableID      string      `json:"table_id"`
}
