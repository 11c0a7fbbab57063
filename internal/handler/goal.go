package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/micro-academy/internal/auth"
	"github.com/sakif/micro-academy/internal/service"
	"github.com/sakif/micro-academy/internal/store"
)

// GoalHandler serves goal CRUD. Ownership is enforced in the service layer;
// the handler's only job is shaping requests and responses.
type GoalHandler struct {
	goals  *service.GoalService
	logger *slog.Logger
}

func NewGoalHandler(goals *service.GoalService, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{goals: goals, logger: logger}
}

// goalCreateRequest mirrors the client's goal creation payload. The
// camelCase field names are the client contract.
type goalCreateRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	VirtueID    string   `json:"learningStyleId"`
	SDGIDs      []string `json:"sdgIds"`
	Progress    int      `json:"progress"`
	Completed   bool     `json:"completed"`
}

// goalUpdateRequest is the partial-update payload. Pointer fields
// distinguish "not sent" (nil, leave alone) from zero values like
// progress=0 or completed=false, which are legitimate updates.
type goalUpdateRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	VirtueID    *string   `json:"learningStyleId"`
	SDGIDs      *[]string `json:"sdgIds"`
	Progress    *int      `json:"progress"`
	Completed   *bool     `json:"completed"`
	Target      *int      `json:"target"`
}

// List handles GET /api/v1/goals — all goals owned by the caller.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}

	goals, err := h.goals.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// Create handles POST /api/v1/goals.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}

	var req goalCreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	goal, err := h.goals.Create(r.Context(), user.ID, service.GoalCreate{
		Title:       req.Title,
		Description: req.Description,
		VirtueID:    req.VirtueID,
		SDGIDs:      req.SDGIDs,
		Progress:    req.Progress,
		Completed:   req.Completed,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

// Update handles PUT /api/v1/goals/{goalID}.
// 404 if the goal doesn't exist, 403 if it belongs to someone else.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}

	var req goalUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	goalID := chi.URLParam(r, "goalID")
	goal, err := h.goals.Update(r.Context(), user.ID, goalID, store.GoalUpdate{
		Title:       req.Title,
		Description: req.Description,
		VirtueID:    req.VirtueID,
		SDGIDs:      req.SDGIDs,
		Progress:    req.Progress,
		Completed:   req.Completed,
		Target:      req.Target,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// Delete handles DELETE /api/v1/goals/{goalID}.
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}

	goalID := chi.URLParam(r, "goalID")
	if err := h.goals.Delete(r.Context(), user.ID, goalID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "goal deleted successfully"})
}
