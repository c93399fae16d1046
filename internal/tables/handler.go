package tables

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tableside/backoffice/internal/domain"
)

type Handler struct {
	repo   *Repository
	logger *slog.Logger
}

func NewHandler(repo *Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

type createTableRequest struct {
	Name   string `json:"name"`
	Seats  int    `json:"seats"`
	Active bool   `json:"active"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "table name is required")
		return
	}

	table := &domain.Table{Name: req.Name, Seats: req.Seats, Active: req.Active}
	if err := h.repo.Create(r.Context(), table); err != nil {
		h.logger.Error("failed to create table", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusCreated, table)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	tables, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list tables", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, tables)
}

type occupiedRequest struct {
	Occupied bool `json:"occupied"`
}

func (h *Handler) HandleSetOccupied(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing table id")
		return
	}

	var req occupiedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.SetOccupied(r.Context(), id, req.Occupied); err != nil {
		if errors.Is(err, domain.ErrTableNotFound) {
			h.writeError(w, http.StatusNotFound, "table not found")
			return
		}
		h.logger.Error("failed to set table occupancy", "error", err, "table_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"occupied": req.Occupied})
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
