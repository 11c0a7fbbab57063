package handler

// RESPONSE HELPERS:
// Every handler in this package replies through these three functions, so the
// API speaks one dialect everywhere.
//
// Success bodies are whatever the handler passes in, encoded as JSON.
// Error bodies always have the same two-field shape:
//
//	{"error": "forbidden", "message": "not authorized to modify this goal"}
//
// The "error" field is a stable machine-readable code the frontend can switch
// on; "message" is for humans. A 403 from the goals API and a 409 from signup
// look structurally identical, which keeps client error handling to one code
// path.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/micro-academy/internal/apperror"
)

// ErrorResponse is the uniform error body for every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`   // stable code: "not_found", "conflict", ...
	Message string `json:"message"` // human-readable description
}

// statusFor translates the domain error taxonomy to HTTP. The service layer
// deliberately knows nothing about HTTP; this switch is the only place in the
// codebase where apperror sentinels meet status codes.
//
// errors.Is walks the whole wrap chain, so a service error like
// fmt.Errorf("service: creating goal: %w", apperror.ValidationFailed(...))
// still matches ErrValidation through both layers of wrapping.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeJSON sends data as a JSON body with the given status.
//
// The order is load-bearing: headers, then WriteHeader, then the body. The
// first Write flushes the headers onto the wire, and anything set after that
// is silently dropped.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Too late to change the status; log and move on.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError renders a domain error as an HTTP error response.
//
// Typed errors (anything carrying an *apperror.AppError) surface their own
// message. Anything else is an unexpected failure and gets a generic 500:
// raw error strings can leak SQL fragments, file paths, or upstream service
// URLs, none of which belong in a client-facing body.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, code := statusFor(err)
		writeJSON(w, status, ErrorResponse{Error: code, Message: appErr.Message})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeBody parses a JSON request body into dst. A malformed body is a
// client error, reported uniformly as a validation failure.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON request body")
	}
	return nil
}
