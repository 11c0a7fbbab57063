package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/micro-academy/internal/service"
)

// CourseHandler serves the public, read-only course catalogue. These routes
// are unauthenticated — browsing the catalogue requires no account.
type CourseHandler struct {
	courses *service.CourseService
	logger  *slog.Logger
}

func NewCourseHandler(courses *service.CourseService, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{courses: courses, logger: logger}
}

// List handles GET /api/v1/courses.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

// Get handles GET /api/v1/courses/{courseID}.
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	course, err := h.courses.Get(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}
