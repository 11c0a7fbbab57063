package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/micro-academy/internal/apperror"
	"github.com/sakif/micro-academy/internal/model"
	"github.com/sakif/micro-academy/internal/store"
)

// GoalService handles goal CRUD with ownership enforcement.
//
// OWNERSHIP RULE: a goal is readable, mutable and deletable only by the user
// whose ID it carries. The check happens HERE, before any write reaches the
// store — a forbidden request must leave the goal byte-for-byte unchanged.
// Not-found and forbidden stay distinct (404 vs 403): goal IDs are UUIDs, so
// confirming one exists leaks nothing useful.
type GoalService struct {
	store  store.Store
	logger *slog.Logger
}

func NewGoalService(st store.Store, logger *slog.Logger) *GoalService {
	return &GoalService{store: st, logger: logger}
}

// List returns all goals owned by the user, oldest first. No goals is an
// empty slice, not an error.
func (s *GoalService) List(ctx context.Context, userID string) ([]model.Goal, error) {
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/goal: listing goals for %s: %w", userID, err)
	}
	return goals, nil
}

// GoalCreate is the input for Create. VirtueID names the learning style the
// goal is framed around; SDGIDs the Sustainable Development Goals it serves.
type GoalCreate struct {
	Title       string
	Description string
	VirtueID    string
	SDGIDs      []string
	Progress    int
	Completed   bool
}

// Create inserts a new goal owned by userID. The store mints the UUID and
// defaults the target.
func (s *GoalService) Create(ctx context.Context, userID string, in GoalCreate) (*model.Goal, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title must not be empty")
	}
	if in.Progress < 0 {
		return nil, apperror.ValidationFailed("progress", "progress must not be negative")
	}

	goal, err := s.store.CreateGoal(ctx, &model.Goal{
		UserID:      userID,
		Title:       title,
		Description: in.Description,
		VirtueID:    in.VirtueID,
		SDGIDs:      in.SDGIDs,
		Progress:    in.Progress,
		Completed:   in.Completed,
	})
	if err != nil {
		return nil, fmt.Errorf("service/goal: creating goal for %s: %w", userID, err)
	}

	s.logger.Info("goal created",
		slog.String("goalID", goal.ID),
		slog.String("userID", userID),
	)
	return goal, nil
}

// Update applies a partial update to a goal the user owns.
func (s *GoalService) Update(ctx context.Context, userID, goalID string, upd store.GoalUpdate) (*model.Goal, error) {
	if err := s.authorize(ctx, userID, goalID); err != nil {
		return nil, err
	}

	goal, err := s.store.UpdateGoal(ctx, goalID, upd)
	if err != nil {
		return nil, fmt.Errorf("service/goal: updating goal %s: %w", goalID, err)
	}
	return goal, nil
}

// Delete removes a goal the user owns.
func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	if err := s.authorize(ctx, userID, goalID); err != nil {
		return err
	}

	if _, err := s.store.DeleteGoal(ctx, goalID); err != nil {
		return fmt.Errorf("service/goal: deleting goal %s: %w", goalID, err)
	}

	s.logger.Info("goal deleted",
		slog.String("goalID", goalID),
		slog.String("userID", userID),
	)
	return nil
}

// authorize loads the goal and checks ownership. 404 if it doesn't exist,
// 403 if it belongs to someone else.
func (s *GoalService) authorize(ctx context.Context, userID, goalID string) error {
	goal, err := s.store.GetGoalByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFound("goal", goalID)
		}
		return fmt.Errorf("service/goal: loading goal %s: %w", goalID, err)
	}
	if goal.UserID != userID {
		return apperror.Forbidden("not authorized to modify this goal")
	}
	return nil
}
