package mealapitest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Lixing-Zhang/meal-tracker/client/internal/models"
	"github.com/go-chi/chi/v5"
)

// fieldError mirrors one entry of a FastAPI validation error detail list
type fieldError struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type"`
}

// MealHandler serves the /meals/ endpoints from a Repository
type MealHandler struct {
	repo   *Repository
	logger *slog.Logger
}

// NewMealHandler creates a new meal handler
func NewMealHandler(repo *Repository, logger *slog.Logger) *MealHandler {
	return &MealHandler{
		repo:   repo,
		logger: logger,
	}
}

// ListMeals handles GET /meals/?skip=&limit=
func (h *MealHandler) ListMeals(w http.ResponseWriter, r *http.Request) {
	skip, ok := h.queryInt(w, r, "skip", 0)
	if !ok {
		return
	}
	limit, ok := h.queryInt(w, r, "limit", 100)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, h.repo.List(r.Context(), skip, limit))
}

// CreateMeal handles POST /meals/
func (h *MealHandler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	meal := h.repo.Create(r.Context(), payload)
	h.logger.Debug("meal created", "meal_id", meal.ID)
	h.writeJSON(w, http.StatusOK, meal)
}

// UpdateMeal handles PUT /meals/{mealId}
func (h *MealHandler) UpdateMeal(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mealID(w, r)
	if !ok {
		return
	}
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	meal, err := h.repo.Update(r.Context(), id, payload)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, meal)
}

// DeleteMeal handles DELETE /meals/{mealId}
func (h *MealHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mealID(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"detail": "Meal deleted"})
}

// UploadImage handles POST /meals/{mealId}/upload-image/
func (h *MealHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mealID(w, r)
	if !ok {
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.writeFieldErrors(w, fieldError{Loc: []interface{}{"body", "image"}, Msg: "Field required", Type: "missing"})
		return
	}
	defer file.Close()

	imageID, err := h.repo.AddImage(r.Context(), id, header.Filename)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Image uploaded successfully",
		"image_id": imageID,
	})
}

func (h *MealHandler) decodePayload(w http.ResponseWriter, r *http.Request) (*models.MealPayload, bool) {
	var payload models.MealPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Warn("invalid meal payload", "error", err)
		h.writeFieldErrors(w, fieldError{Loc: []interface{}{"body"}, Msg: "JSON decode error", Type: "json_invalid"})
		return nil, false
	}

	var missing []fieldError
	if strings.TrimSpace(payload.Name) == "" {
		missing = append(missing, fieldError{Loc: []interface{}{"body", "name"}, Msg: "Field required", Type: "missing"})
	}
	if strings.TrimSpace(payload.Description) == "" {
		missing = append(missing, fieldError{Loc: []interface{}{"body", "description"}, Msg: "Field required", Type: "missing"})
	}
	for i, ingredient := range payload.Ingredients {
		if ingredient.Name == "" {
			missing = append(missing, fieldError{Loc: []interface{}{"body", "ingredients", i, "name"}, Msg: "Field required", Type: "missing"})
		}
	}
	if len(missing) > 0 {
		h.writeFieldErrors(w, missing...)
		return nil, false
	}

	return &payload, true
}

func (h *MealHandler) mealID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "mealId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.logger.Warn("invalid meal ID format", "mealId", raw, "error", err)
		h.writeFieldErrors(w, fieldError{Loc: []interface{}{"path", "meal_id"}, Msg: "Input should be a valid integer", Type: "int_parsing"})
		return 0, false
	}
	return id, true
}

func (h *MealHandler) queryInt(w http.ResponseWriter, r *http.Request, key string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		h.writeFieldErrors(w, fieldError{Loc: []interface{}{"query", key}, Msg: "Input should be a valid integer", Type: "int_parsing"})
		return 0, false
	}
	if value < 0 {
		h.writeFieldErrors(w, fieldError{Loc: []interface{}{"query", key}, Msg: "Input should be greater than or equal to 0", Type: "greater_than_equal"})
		return 0, false
	}
	return value, true
}

func (h *MealHandler) writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrMealNotFound) {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Meal not found"})
		return
	}
	h.logger.Error("repository failure", "error", err)
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal server error"})
}

func (h *MealHandler) writeFieldErrors(w http.ResponseWriter, errs ...fieldError) {
	h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"detail": errs})
}

// writeJSON writes a JSON response
func (h *MealHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", "error", err)
	}
}
