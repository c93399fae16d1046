package catalog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

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

type dishIngredientRequest struct {
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

type dishRequest struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	CategoryID  string                  `json:"category_id"`
	Price       decimal.Decimal         `json:"price"`
	Ingredients []dishIngredientRequest `json:"ingredients"`
}

func (req dishRequest) toDish(id string) *domain.Dish {
	dish := &domain.Dish{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
	}
	for _, link := range req.Ingredients {
		dish.Ingredients = append(dish.Ingredients, domain.DishIngredient{
			Ingredient: &domain.Ingredient{ID: link.IngredientID},
			Quantity:   link.Quantity,
		})
	}
	return dish
}

func (h *Handler) HandleCreateDish(w http.ResponseWriter, r *http.Request) {
	var req dishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "dish name is required")
		return
	}

	dish := req.toDish("")
	if err := h.repo.CreateDish(r.Context(), dish); err != nil {
		h.logger.Error("failed to create dish", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("dish created", "dish_id", dish.ID, "name", dish.Name)
	h.writeJSON(w, http.StatusCreated, dish)
}

func (h *Handler) HandleUpdateDish(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing dish id")
		return
	}

	var req dishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dish := req.toDish(id)
	if err := h.repo.UpdateDish(r.Context(), dish); err != nil {
		if errors.Is(err, domain.ErrDishNotFound) {
			h.writeError(w, http.StatusNotFound, "dish not found")
			return
		}
		h.logger.Error("failed to update dish", "error", err, "dish_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, dish)
}

func (h *Handler) HandleDeleteDish(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing dish id")
		return
	}

	if err := h.repo.DeleteDish(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrDishNotFound) {
			h.writeError(w, http.StatusNotFound, "dish not found")
			return
		}
		h.logger.Error("failed to delete dish", "error", err, "dish_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGetDish(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing dish id")
		return
	}

	dish, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get dish", "error", err, "dish_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if dish == nil {
		h.writeError(w, http.StatusNotFound, "dish not found")
		return
	}

	h.writeJSON(w, http.StatusOK, dish)
}

func (h *Handler) HandleListDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.repo.ListDishes(r.Context())
	if err != nil {
		h.logger.Error("failed to list dishes", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, dishes)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "category name is required")
		return
	}

	category := &domain.Category{Name: req.Name}
	if err := h.repo.CreateCategory(r.Context(), category); err != nil {
		h.logger.Error("failed to create category", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) HandleCreateUnit(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "unit name is required")
		return
	}

	unit := &domain.Unit{Name: req.Name}
	if err := h.repo.CreateUnit(r.Context(), unit); err != nil {
		h.logger.Error("failed to create unit", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusCreated, unit)
}

func (h *Handler) HandleListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.repo.ListUnits(r.Context())
	if err != nil {
		h.logger.Error("failed to list units", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, units)
}

type ingredientRequest struct {
	Name   string `json:"name"`
	UnitID string `json:"unit_id"`
}

func (h *Handler) HandleCreateIngredient(w http.ResponseWriter, r *http.Request) {
	var req ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "ingredient name is required")
		return
	}

	ingredient := &domain.Ingredient{Name: req.Name, Unit: domain.Unit{ID: req.UnitID}}
	if err := h.repo.CreateIngredient(r.Context(), ingredient); err != nil {
		h.logger.Error("failed to create ingredient", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusCreated, ingredient)
}

func (h *Handler) HandleListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.repo.ListIngredients(r.Context())
	if err != nil {
		h.logger.Error("failed to list ingredients", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, ingredients)
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
