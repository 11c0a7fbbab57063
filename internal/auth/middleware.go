package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/micro-academy/internal/apperror"
	"github.com/sakif/micro-academy/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "user", u), ANY package that knows the string "user"
// can read or shadow your value. Using a package-private type prevents
// collisions: only THIS package can create a key of type contextKey.
type contextKey string

const userKey contextKey = "user"

// UserLookup is the one store capability the resolver needs — declared here
// (at the consumer) so this package doesn't depend on the store package.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// RequireUser is the authentication resolver middleware. It turns an inbound
// bearer token into a fully resolved user record in the request context.
//
// The state machine is terminal on the first failure:
//
//  1. No Authorization: Bearer credential      → 401
//  2. Token fails signature/expiry validation  → 401 (causes indistinguishable)
//  3. Valid token with an empty subject claim  → 401
//  4. Subject doesn't resolve to a user        → 404
//  5. Otherwise the resolved user is stored in the context for handlers
//
// An unexpected store failure during step 4 is a 500, distinct from the
// four expected outcomes above.
func RequireUser(tokens *TokenService, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "not authenticated")
				return
			}

			claims, ok := tokens.Decode(tokenStr)
			if !ok {
				unauthorized(w, "invalid authentication credentials")
				return
			}

			if claims.Subject == "" {
				unauthorized(w, "invalid token payload")
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					writeJSONError(w, http.StatusNotFound, "not_found", "user not found")
					return
				}
				writeJSONError(w, http.StatusInternalServerError, "internal_error", "error fetching user")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the resolved user set by RequireUser.
//
// Returns (nil, false) if the request never passed through the middleware —
// on a protected route that indicates a routing bug, and handlers should
// treat it as unauthorized rather than panic.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// bearerToken extracts the credential from "Authorization: Bearer <token>".
// The scheme comparison is case-insensitive per RFC 7235.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSONError(w, http.StatusUnauthorized, "unauthorized", message)
}

// writeJSONError is a minimal local error writer. The handler package has a
// richer one, but importing it here would invert the dependency direction
// (handlers depend on auth for the middleware).
func writeJSONError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errType + `","message":"` + message + `"}`))
}
