package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/micro-academy/internal/config"
	"github.com/sakif/micro-academy/internal/server"
	"github.com/sakif/micro-academy/internal/store"
)

// newTestAPI wires the real composition root on an in-memory embedded store
// and returns the router. These are end-to-end tests of the HTTP surface:
// real middleware, real services, real SQLite — only the network is fake.
func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(store.Options{ForceEmbedded: true, DBPath: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{
		Port:           0,
		ForceEmbedded:  true,
		JWTSecret:      "test-secret-at-least-16-chars!!",
		JWTAlgorithm:   "HS256",
		JWTExpiryHours: 1,
		CORSOrigins:    "http://localhost:5173",
	}

	srv, err := server.New(cfg, st, logger)
	require.NoError(t, err)
	return srv.Router()
}

// doJSON runs one request against the router and decodes the JSON response
// into a generic map.
func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	out := map[string]any{}
	if rr.Body.Len() > 0 {
		// Some endpoints return arrays; those tests decode separately.
		_ = json.Unmarshal(rr.Body.Bytes(), &out)
	}
	return rr.Code, out
}

func signup(t *testing.T, router http.Handler, email, name, password string) (token, userID string) {
	t.Helper()

	status, body := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": email, "name": name, "password": password,
	})
	require.Equal(t, http.StatusCreated, status, "signup response: %v", body)

	token, _ = body["access_token"].(string)
	require.NotEmpty(t, token)
	user, _ := body["user"].(map[string]any)
	require.NotNil(t, user)
	userID, _ = user["id"].(string)
	require.NotEmpty(t, userID)
	return token, userID
}

func TestHealthReportsMode(t *testing.T) {
	router := newTestAPI(t)

	status, body := doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "embedded", body["mode"])
}

func TestSignupLoginFlow(t *testing.T) {
	router := newTestAPI(t)

	_, userID := signup(t, router, "ada@example.com", "Ada", "hunter22")

	t.Run("duplicate signup is 409", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
			"email": "ada@example.com", "name": "Imposter", "password": "other",
		})
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "conflict", body["error"])
	})

	t.Run("login returns a token for the same user", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": "ada@example.com", "password": "hunter22",
		})
		require.Equal(t, http.StatusOK, status)
		assert.NotEmpty(t, body["access_token"])

		user, _ := body["user"].(map[string]any)
		require.NotNil(t, user)
		assert.Equal(t, userID, user["id"])
	})

	t.Run("wrong password is a uniform 401", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": "ada@example.com", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "unauthorized", body["error"])
	})

	t.Run("no response ever carries a password field", func(t *testing.T) {
		_, body := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": "ada@example.com", "password": "hunter22",
		})
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "password")
	})
}

func TestProfileRoutes(t *testing.T) {
	router := newTestAPI(t)
	token, userID := signup(t, router, "ada@example.com", "Ada", "hunter22")

	t.Run("me requires authentication", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodGet, "/api/v1/users/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("me returns the caller's profile", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodGet, "/api/v1/users/me", token, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, userID, body["id"])
		assert.Equal(t, "ada@example.com", body["email"])
	})

	t.Run("profile update merges preferences", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodPut, "/api/v1/users/me", token, map[string]any{
			"preferences": map[string]any{"theme": "light", "language": "en"},
		})
		require.Equal(t, http.StatusOK, status)

		// Second update touches only the theme; language must survive.
		status, body := doJSON(t, router, http.MethodPut, "/api/v1/users/me", token, map[string]any{
			"preferences": map[string]any{"theme": "dark"},
		})
		require.Equal(t, http.StatusOK, status)

		prefs, _ := body["preferences"].(map[string]any)
		require.NotNil(t, prefs)
		assert.Equal(t, "dark", prefs["theme"])
		assert.Equal(t, "en", prefs["language"])
	})

	t.Run("preferences endpoint replaces wholesale", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPut, "/api/v1/users/me/preferences", token, map[string]any{
			"preferences": map[string]any{"theme": "solarized"},
		})
		require.Equal(t, http.StatusOK, status)

		prefs, _ := body["preferences"].(map[string]any)
		require.NotNil(t, prefs)
		assert.Equal(t, "solarized", prefs["theme"])
		assert.NotContains(t, prefs, "language")
	})
}

func TestGoalRoutes(t *testing.T) {
	router := newTestAPI(t)
	ownerToken, _ := signup(t, router, "owner@example.com", "Owner", "hunter22")
	otherToken, _ := signup(t, router, "other@example.com", "Other", "hunter22")

	// Create a goal as the owner.
	status, created := doJSON(t, router, http.MethodPost, "/api/v1/goals", ownerToken, map[string]any{
		"title":           "Read 3 papers",
		"learningStyleId": "curiosity",
		"sdgIds":          []string{"sdg-4"},
	})
	require.Equal(t, http.StatusCreated, status)
	goalID, _ := created["id"].(string)
	require.NotEmpty(t, goalID)

	t.Run("foreign update is 403 and leaves the goal unchanged", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodPut, "/api/v1/goals/"+goalID, otherToken, map[string]any{
			"title": "hijacked",
		})
		assert.Equal(t, http.StatusForbidden, status)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/goals", nil)
		req.Header.Set("Authorization", "Bearer "+ownerToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var goals []map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &goals))
		require.Len(t, goals, 1)
		assert.Equal(t, "Read 3 papers", goals[0]["title"])
	})

	t.Run("owner can update with zero values", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPut, "/api/v1/goals/"+goalID, ownerToken, map[string]any{
			"progress":  0,
			"completed": false,
		})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(0), body["progress"])
		assert.Equal(t, false, body["completed"])
	})

	t.Run("foreign delete is 403", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodDelete, "/api/v1/goals/"+goalID, otherToken, nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("missing goal is 404", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodPut, "/api/v1/goals/ghost", ownerToken, map[string]any{
			"title": "whatever",
		})
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("owner delete succeeds", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodDelete, "/api/v1/goals/"+goalID, ownerToken, nil)
		assert.Equal(t, http.StatusOK, status)
	})
}

func TestCourseRoutesArePublic(t *testing.T) {
	router := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var courses []any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &courses))
	assert.Empty(t, courses)

	status, body := doJSON(t, router, http.MethodGet, "/api/v1/courses/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["error"])
}

func TestRefreshRoute(t *testing.T) {
	router := newTestAPI(t)
	token, _ := signup(t, router, "ada@example.com", "Ada", "hunter22")

	t.Run("requires authentication", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("re-issues a token", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", token, nil)
		require.Equal(t, http.StatusOK, status)
		assert.NotEmpty(t, body["access_token"])
		assert.Equal(t, "bearer", body["token_type"])
	})
}
