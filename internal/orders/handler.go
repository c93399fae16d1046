package orders

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tableside/backoffice/internal/domain"
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

type createOrderRequest struct {
	UserID  string `json:"user_id"`
	TableID string `json:"table_id"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.Create(r.Context(), req.UserID, req.TableID)
	if err != nil {
		h.writeServiceError(w, err, "failed to create order")
		return
	}

	h.writeJSON(w, http.StatusCreated, order)
}

type orderItemRequest struct {
	DishID   string `json:"dish_id"`
	Quantity int    `json:"quantity"`
	Ready    bool   `json:"ready"`
}

type updateOrderRequest struct {
	UserID            string             `json:"user_id"`
	TableID           string             `json:"table_id"`
	Items             []orderItemRequest `json:"items"`
	StartedProcessing bool               `json:"started_processing"`
	Status            string             `json:"status"`
	ReadyToServe      bool               `json:"ready_to_serve"`
	TotalPrice        decimal.Decimal    `json:"total_price"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order status")
		return
	}

	in := UpdateInput{
		UserID:            req.UserID,
		TableID:           req.TableID,
		StartedProcessing: req.StartedProcessing,
		Status:            status,
		ReadyToServe:      req.ReadyToServe,
		TotalPrice:        req.TotalPrice,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, ItemInput{DishID: item.DishID, Quantity: item.Quantity, Ready: item.Ready})
	}

	order, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.writeServiceError(w, err, "failed to update order")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

type setReadyRequest struct {
	Ready bool `json:"ready"`
}

func (h *Handler) HandleSetReady(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req setReadyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.SetReadyToServe(r.Context(), id, req.Ready)
	if err != nil {
		h.writeServiceError(w, err, "failed to set ready flag")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete order", "error", err, "order_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "order_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.FindAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) HandleListOpen(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.FindAllNotClosed(r.Context())
	if err != nil {
		h.logger.Error("failed to list open orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) HandleListByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := domain.ParseOrderStatus(r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order status")
		return
	}

	orders, err := h.service.FindByStatus(r.Context(), status)
	if err != nil {
		h.logger.Error("failed to list orders by status", "error", err, "status", status)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) HandleListRange(w http.ResponseWriter, r *http.Request) {
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
	status, err := domain.ParseOrderStatus(q.Get("status"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order status")
		return
	}

	orders, err := h.service.FindInRange(r.Context(), start, end, status)
	if err != nil {
		h.logger.Error("failed to list orders in range", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) HandleServeStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.service.ServeStatuses(r.Context())
	if err != nil {
		h.logger.Error("failed to project serve statuses", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, statuses)
}

// writeServiceError maps the domain's not-found sentinels to 404 with the
// entity-specific message; anything else is an opaque 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTableNotFound),
		errors.Is(err, domain.ErrDishNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error(logMsg, "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
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
