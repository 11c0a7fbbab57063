package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/sakif/micro-academy/internal/model"
	"github.com/sakif/micro-academy/internal/store"
)

// UserService handles profile reads and updates for the authenticated user.
// Every method operates on the caller's own record — the user is resolved by
// the middleware, so there is no cross-user access to authorize here.
type UserService struct {
	store  store.Store
	logger *slog.Logger
}

func NewUserService(st store.Store, logger *slog.Logger) *UserService {
	return &UserService{store: st, logger: logger}
}

// ProfileUpdate is the partial-update input for UpdateProfile. Nil means
// "leave unchanged".
type ProfileUpdate struct {
	Name        *string
	Preferences map[string]any
}

// UpdateProfile applies a partial profile update.
//
// Preferences are merged ADDITIVELY: keys in the payload overwrite matching
// stored keys, keys absent from the payload survive. Clients send just the
// setting they changed without clobbering the rest. A full replace is a
// separate, explicit operation (ReplacePreferences).
func (s *UserService) UpdateProfile(ctx context.Context, user *model.User, upd ProfileUpdate) (*model.User, error) {
	change := store.UserUpdate{Name: upd.Name}

	if upd.Preferences != nil {
		merged := map[string]any{}
		maps.Copy(merged, user.Preferences)
		maps.Copy(merged, upd.Preferences)
		change.Preferences = &merged
	}

	updated, err := s.store.UpdateUser(ctx, user.ID, change)
	if err != nil {
		return nil, fmt.Errorf("service/user: updating profile %s: %w", user.ID, err)
	}
	return updated, nil
}

// ReplacePreferences swaps out the whole preferences object. Keys missing
// from the payload are GONE afterwards — this is the deliberate opposite of
// UpdateProfile's merge.
func (s *UserService) ReplacePreferences(ctx context.Context, userID string, prefs map[string]any) (*model.User, error) {
	if prefs == nil {
		prefs = map[string]any{}
	}
	updated, err := s.store.UpdateUser(ctx, userID, store.UserUpdate{Preferences: &prefs})
	if err != nil {
		return nil, fmt.Errorf("service/user: replacing preferences for %s: %w", userID, err)
	}
	return updated, nil
}

// LegacyGoals reads the nested goals container on the user record. Older
// clients store their goal list here as opaque JSON; the structured goals
// relation (GoalService) is the canonical replacement.
func (s *UserService) LegacyGoals(ctx context.Context, userID string) ([]any, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/user: loading goals container for %s: %w", userID, err)
	}
	return user.Goals, nil
}

// ReplaceLegacyGoals overwrites the nested goals container wholesale. The
// contents are client-owned; the server does not interpret them.
func (s *UserService) ReplaceLegacyGoals(ctx context.Context, userID string, goals []any) (*model.User, error) {
	if goals == nil {
		goals = []any{}
	}
	updated, err := s.store.UpdateUser(ctx, userID, store.UserUpdate{Goals: &goals})
	if err != nil {
		return nil, fmt.Errorf("service/user: replacing goals container for %s: %w", userID, err)
	}
	return updated, nil
}
