package mealapitest

import (
	"net/http"
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Meals     int       `json:"meals"`
}

// Health handles GET /health so scripts can wait for a local fake API to come up
func (h *MealHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Meals:     h.repo.Count(),
	})
}
