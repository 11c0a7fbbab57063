// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account on the platform.
//
// The ID is an opaque string. In embedded mode we generate a UUID ourselves;
// in remote mode the managed service issues the ID when it creates the auth
// account. Either way, once assigned the ID never changes.
//
// WHY NO PasswordHash FIELD?
// The stored credential never travels with the user record. It only exists in
// embedded mode, and the one code path that needs it (login) fetches it through
// the store's GetUserPasswordHash. Keeping it off the struct makes "the hash is
// never present in any response payload" impossible to get wrong — there is
// nothing to accidentally serialize.
//
// Preferences is an open-ended mapping: the client owns its shape (theme,
// onboarding flags, selected SDGs, ...) and the server treats it as opaque
// JSON. Goals here is the LEGACY nested container kept for the
// /users/me/goals routes — canonical goal storage is the goals relation
// (see model.Goal). Progress is an opaque ordered sequence.
type User struct {
	ID          string         `json:"id"          db:"id"`
	Email       string         `json:"email"       db:"email"`
	Name        string         `json:"name"        db:"name"`
	Preferences map[string]any `json:"preferences" db:"preferences"`
	Goals       []any          `json:"goals"       db:"goals"`
	Progress    []any          `json:"progress"    db:"progress"`
	CreatedAt   time.Time      `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt"   db:"updated_at"`
}
