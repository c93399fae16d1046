package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/tableside/backoffice/internal/domain"
)

// Handler turns order.closed events into customer receipt notifications.
// Delivery is simulated; swapping in a real printer or mail gateway only
// touches send.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

func (h *Handler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderClosedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order closed event: %w", err)
	}

	receipt := fmt.Sprintf("order %s: %d items, total %s, served in %s",
		event.OrderID, event.ItemCount, event.TotalPrice.StringFixed(2), event.Duration.Round(time.Second))

	if err := h.send(ctx, receipt); err != nil {
		h.logger.Error("failed to issue receipt", "error", err, "order_id", event.OrderID)
		return err
	}

	h.logger.Info("receipt issued", "order_id", event.OrderID, "table_id", event.TableID, "total", event.TotalPrice.StringFixed(2))
	return nil
}

func (h *Handler) send(ctx context.Context, receipt string) error {
	delay := time.Duration(50+rand.Intn(151)) * time.Millisecond
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	h.logger.Info("receipt printed", "receipt", receipt)
	return nil
}
