// Package handler contains the HTTP request handlers for the API.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming HTTP request (path params, body, headers)
// 2. Call the service layer (business rules live there, not here)
// 3. Write the HTTP response (status code, headers, JSON body)
//
// Handlers should NOT contain business logic — they are the "glue" between
// HTTP and the application. Notice that none of them touch the store
// directly; everything goes through a service.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/micro-academy/internal/auth"
	"github.com/sakif/micro-academy/internal/model"
	"github.com/sakif/micro-academy/internal/service"
)

// AuthHandler serves signup, login and token refresh.
type AuthHandler struct {
	auths  *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auths *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auths: auths, logger: logger}
}

// signupRequest is the POST /auth/signup body.
type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenResponse is the shape of every successful auth response.
// TokenType is always "bearer" — clients put the token in the
// Authorization header verbatim.
type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        *publicUser `json:"user,omitempty"`
}

// publicUser is the user payload embedded in auth responses. It is a
// subset of the profile — signup/login callers only need identity fields
// plus preferences for client bootstrap.
type publicUser struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Preferences map[string]any `json:"preferences"`
}

func toPublicUser(u *model.User) *publicUser {
	return &publicUser{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Preferences: u.Preferences,
	}
}

// Signup handles POST /api/v1/auth/signup.
// 201 with token + user on success; 409 if the email is taken.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auths.Signup(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		User:        toPublicUser(result.User),
	})
}

// Login handles POST /api/v1/auth/login.
// Any credential failure is a uniform 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auths.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		User:        toPublicUser(result.User),
	})
}

// Refresh handles POST /api/v1/auth/refresh. It sits behind RequireUser, so
// the current token has already been verified and the user resolved.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		// Route wired without the middleware — a programming error.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}

	token, err := h.auths.Refresh(user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
