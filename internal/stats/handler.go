package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) HandleOrderCount(w http.ResponseWriter, r *http.Request) {
	h.handleRange(w, r, "order count", func(ctx context.Context, start, end time.Time) (any, error) {
		return h.service.OrderCountByDay(ctx, start, end)
	})
}

func (h *Handler) HandleTotalPrice(w http.ResponseWriter, r *http.Request) {
	h.handleRange(w, r, "total price", func(ctx context.Context, start, end time.Time) (any, error) {
		return h.service.TotalPriceByDay(ctx, start, end)
	})
}

func (h *Handler) HandleWaiters(w http.ResponseWriter, r *http.Request) {
	h.handleRange(w, r, "waiter", func(ctx context.Context, start, end time.Time) (any, error) {
		return h.service.WaiterStats(ctx, start, end)
	})
}

func (h *Handler) HandleDishes(w http.ResponseWriter, r *http.Request) {
	h.handleRange(w, r, "dish", func(ctx context.Context, start, end time.Time) (any, error) {
		return h.service.DishStats(ctx, start, end)
	})
}

func (h *Handler) HandleIngredients(w http.ResponseWriter, r *http.Request) {
	h.handleRange(w, r, "ingredient", func(ctx context.Context, start, end time.Time) (any, error) {
		return h.service.IngredientStats(ctx, start, end)
	})
}

func (h *Handler) HandleTraffic(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	traffic, err := h.service.HourlyTraffic(r.Context(), date)
	if err != nil {
		h.logger.Error("failed to compute hourly traffic", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, traffic)
}

func (h *Handler) handleRange(w http.ResponseWriter, r *http.Request, name string,
	compute func(ctx context.Context, start, end time.Time) (any, error)) {

	q := r.URL.Query()

	start, err := time.Parse("2006-01-02", q.Get("start"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid start date")
		return
	}
	end, err := time.Parse("2006-01-02", q.Get("end"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid end date")
		return
	}

	result, err := compute(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to compute statistics", "error", err, "statistic", name)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
