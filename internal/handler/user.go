package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/micro-academy/internal/auth"
	"github.com/sakif/micro-academy/internal/service"
)

// UserHandler serves the /users/me profile surface. Every route sits behind
// RequireUser, so the subject is always the caller's own record.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type profileUpdateRequest struct {
	Name        *string        `json:"name"`
	Preferences map[string]any `json:"preferences"`
}

type preferencesUpdateRequest struct {
	Preferences map[string]any `json:"preferences"`
}

// Me handles GET /api/v1/users/me — the full profile of the caller.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateMe handles PUT /api/v1/users/me.
// Omitted fields stay as they are; supplied preferences MERGE into the
// stored object rather than replacing it.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}

	var req profileUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user, service.ProfileUpdate{
		Name:        req.Name,
		Preferences: req.Preferences,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// UpdatePreferences handles PUT /api/v1/users/me/preferences — the explicit
// FULL REPLACE of the preferences object (contrast with UpdateMe's merge).
func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}

	var req preferencesUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.users.ReplacePreferences(r.Context(), user.ID, req.Preferences)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Goals handles GET /api/v1/users/me/goals — the legacy nested goals
// container, returned as the raw list older clients stored.
func (h *UserHandler) Goals(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}

	goals, err := h.users.LegacyGoals(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// UpdateGoals handles PUT /api/v1/users/me/goals — wholesale replacement of
// the legacy container. The body is the bare JSON array.
func (h *UserHandler) UpdateGoals(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}

	var goals []any
	if err := decodeBody(r, &goals); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.users.ReplaceLegacyGoals(r.Context(), user.ID, goals)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
