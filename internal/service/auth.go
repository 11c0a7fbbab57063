// Package service — authentication business logic.
//
// AuthService sits between the HTTP handlers and the persistence adapter:
//
//	AuthHandler (HTTP) → AuthService (business rules) → store.Store (persistence)
//	                   ↘ auth.TokenService (JWT) / auth.PasswordService (bcrypt)
//
// THE ONE PLACE THAT BRANCHES ON PERSISTENCE MODE:
// Everywhere else in the app the Store interface hides which backend is
// active. Credential handling is the single exception, because WHO verifies
// a password genuinely differs: in embedded mode this process hashes and
// checks passwords itself; in remote mode the managed service does both and
// we only learn the outcome. That branch lives here — once — via a type
// assertion on store.Authenticator, so handlers stay mode-oblivious.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/sakif/micro-academy/internal/apperror"
	"github.com/sakif/micro-academy/internal/auth"
	"github.com/sakif/micro-academy/internal/model"
	"github.com/sakif/micro-academy/internal/store"
)

// AuthService handles signup, login and token refresh.
type AuthService struct {
	store     store.Store
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	st store.Store,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:     st,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler can
// shape the response in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Signup registers a new account and signs the user in.
//
// Duplicate email is a conflict, checked BEFORE any write so a failed signup
// never leaves a second row behind. The race window between the check and the
// insert is closed by the backing uniqueness constraint, which the store also
// reports as a conflict.
//
// ID and credential ownership depend on the mode:
//   - embedded: we mint the UUID and store a local bcrypt hash
//   - remote:   the service registers the account, verifies nothing locally,
//     and hands back ITS user ID; we store the profile row with no hash
func (s *AuthService) Signup(ctx context.Context, email, name, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password must not be empty")
	}
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name must not be empty")
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.Duplicate("user", "email")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking existing email: %w", err)
	}

	var (
		userID       string
		passwordHash string
	)
	if remote, ok := s.store.(store.Authenticator); ok {
		id, accepted, err := remote.SignUp(ctx, email, password)
		if err != nil {
			return nil, fmt.Errorf("service/auth: delegated sign-up: %w", err)
		}
		if !accepted {
			// The service knows about accounts our profile table doesn't.
			return nil, apperror.Duplicate("user", "email")
		}
		userID = id
	} else {
		userID = uuid.NewString()
		hash, err := s.passwords.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("service/auth: hashing password: %w", err)
		}
		passwordHash = hash
	}

	user, err := s.store.CreateUser(ctx, userID, email, name, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("mode", string(s.store.Mode())),
	)

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a fresh token.
//
// Every credential failure — unknown email, wrong password, service
// rejection — maps to the SAME unauthorized error. Distinguishing them would
// tell an attacker which emails exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	var user *model.User
	if remote, ok := s.store.(store.Authenticator); ok {
		userID, accepted, err := remote.SignIn(ctx, email, password)
		if err != nil {
			return nil, fmt.Errorf("service/auth: delegated sign-in: %w", err)
		}
		if !accepted {
			return nil, apperror.Unauthorized("invalid email or password")
		}

		// The service vouched for the credentials; the profile row must
		// exist for the account to be usable.
		user, err = s.store.GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.NotFound("user profile", userID)
			}
			return nil, fmt.Errorf("service/auth: loading profile for %s: %w", userID, err)
		}
	} else {
		u, err := s.store.GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.Unauthorized("invalid email or password")
			}
			return nil, fmt.Errorf("service/auth: looking up user: %w", err)
		}

		hash, err := s.store.GetUserPasswordHash(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("service/auth: loading password hash: %w", err)
		}
		if hash == "" || !s.passwords.Verify(password, hash) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		user = u
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Refresh re-issues a token for an already-authenticated user. The resolver
// middleware has verified the current token and loaded the user; there is
// nothing left to check here.
func (s *AuthService) Refresh(user *model.User) (string, error) {
	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("service/auth: refreshing token for user %s: %w", user.ID, err)
	}
	return token, nil
}

// validateEmail applies the minimal structural check: non-empty, one "@"
// with characters on both sides. Real validation is the mail loop's job.
func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if email == "" || at <= 0 || at == len(email)-1 {
		return apperror.ValidationFailed("email", "a valid email address is required")
	}
	return nil
}
