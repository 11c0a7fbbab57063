package handler

import (
	"net/http"

	"github.com/sakif/micro-academy/internal/store"
)

// HealthHandler answers liveness probes. The response names the active
// persistence mode so a glance at /health tells you whether a deployment
// came up remote or fell back to embedded.
type HealthHandler struct {
	mode store.Mode
}

func NewHealthHandler(mode store.Mode) *HealthHandler {
	return &HealthHandler{mode: mode}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "micro-academy-api",
		"mode":    string(h.mode),
	})
}
