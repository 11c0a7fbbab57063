package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/micro-academy/internal/apperror"
	"github.com/sakif/micro-academy/internal/model"
)

// userColumns is the SELECT list shared by every user read path, so the
// scan order below can never drift from the query.
const userColumns = `id, email, name, preferences, goals, progress, created_at, updated_at`

// scanUser decodes one users row, including the JSON container columns.
// This is the single read-side boundary for user records — see encodeJSON /
// decodeJSON in sqlite.go.
func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u                      model.User
		prefs, goals, progress string
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Name,
		&prefs, &goals, &progress,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Preferences = map[string]any{}
	u.Goals = []any{}
	u.Progress = []any{}
	if err := decodeJSON(prefs, &u.Preferences); err != nil {
		return nil, err
	}
	if err := decodeJSON(goals, &u.Goals); err != nil {
		return nil, err
	}
	if err := decodeJSON(progress, &u.Progress); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user row with empty-default JSON containers.
// A UNIQUE violation on email is translated to a conflict error so a signup
// race loses cleanly instead of surfacing as a raw driver error.
func (s *sqliteStore) CreateUser(ctx context.Context, id, email, name, passwordHash string) (*model.User, error) {
	now := time.Now()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, preferences, goals, progress, created_at, updated_at)
		 VALUES (?, ?, ?, ?, '{}', '[]', '[]', ?, ?)`,
		id, email, name, passwordHash, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Duplicate("user", "email")
		}
		return nil, fmt.Errorf("sqlite: inserting user %s: %w", id, err)
	}

	return &model.User{
		ID:          id,
		Email:       email,
		Name:        name,
		Preferences: map[string]any{},
		Goals:       []any{},
		Progress:    []any{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GetUserByEmail looks up a user by exact email match.
// A miss returns apperror.ErrNotFound, never a plain failure.
func (s *sqliteStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

func (s *sqliteStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetUserPasswordHash returns the stored bcrypt hash for login verification.
// This is the only path that ever reads password_hash.
func (s *sqliteStore) GetUserPasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := s.conn.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE id = ?`, id,
	).Scan(&hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", apperror.NotFound("user", id)
		}
		return "", fmt.Errorf("sqlite: getting password hash for %s: %w", id, err)
	}
	return hash, nil
}

// UpdateUser applies only the supplied fields. The SET clause is built
// dynamically; structured values pass through encodeJSON on the way in.
// updated_at is always refreshed, even for a no-field update.
func (s *sqliteStore) UpdateUser(ctx context.Context, id string, upd UserUpdate) (*model.User, error) {
	setClauses := make([]string, 0, 5)
	args := make([]any, 0, 6)

	if upd.Name != nil {
		setClauses = append(setClauses, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Preferences != nil {
		encoded, err := encodeJSON(*upd.Preferences)
		if err != nil {
			return nil, err
		}
		setClauses = append(setClauses, "preferences = ?")
		args = append(args, encoded)
	}
	if upd.Goals != nil {
		encoded, err := encodeJSON(*upd.Goals)
		if err != nil {
			return nil, err
		}
		setClauses = append(setClauses, "goals = ?")
		args = append(args, encoded)
	}
	if upd.Progress != nil {
		encoded, err := encodeJSON(*upd.Progress)
		if err != nil {
			return nil, err
		}
		setClauses = append(setClauses, "progress = ?")
		args = append(args, encoded)
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now())
	args = append(args, id)

	result, err := s.conn.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(setClauses, ", ")+` WHERE id = ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating user %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return nil, apperror.NotFound("user", id)
	}

	return s.GetUserByID(ctx, id)
}

// isUniqueViolation detects a UNIQUE constraint failure without depending
// on driver-specific error types: modernc's driver reports SQLite's
// "UNIQUE constraint failed: table.column" message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
