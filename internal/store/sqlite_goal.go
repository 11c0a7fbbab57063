package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sakif/micro-academy/internal/apperror"
	"github.com/sakif/micro-academy/internal/model"
)

const goalColumns = `id, user_id, title, description, virtue_id, sdg_ids, progress, completed, target, created_at, updated_at`

// scanGoal decodes one goals row, including the sdg_ids JSON column.
// Paired with the encodeJSON call in CreateGoal/UpdateGoal — the SDG list
// must round-trip through exactly this boundary in every code path.
func scanGoal(row interface{ Scan(...any) error }) (*model.Goal, error) {
	var (
		g      model.Goal
		sdgIDs string
	)
	err := row.Scan(
		&g.ID, &g.UserID, &g.Title, &g.Description, &g.VirtueID,
		&sdgIDs, &g.Progress, &g.Completed, &g.Target,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.SDGIDs = []string{}
	if err := decodeJSON(sdgIDs, &g.SDGIDs); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *sqliteStore) ListGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing goals for user %s: %w", userID, err)
	}
	defer rows.Close()

	goals := []model.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning goal row: %w", err)
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating goals: %w", err)
	}

	return goals, nil
}

// CreateGoal inserts a goal, generating a UUID when the caller omitted the
// ID, and reads the stored row back so defaults land in the returned value.
func (s *sqliteStore) CreateGoal(ctx context.Context, goal *model.Goal) (*model.Goal, error) {
	id := goal.ID
	if id == "" {
		id = uuid.NewString()
	}

	target := goal.Target
	if target < 1 {
		target = 1
	}

	sdgIDs := goal.SDGIDs
	if sdgIDs == nil {
		sdgIDs = []string{}
	}
	encoded, err := encodeJSON(sdgIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO goals (id, user_id, title, description, virtue_id, sdg_ids, progress, completed, target, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, goal.UserID, goal.Title, goal.Description, goal.VirtueID,
		encoded, goal.Progress, goal.Completed, target, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting goal %s: %w", id, err)
	}

	return s.GetGoalByID(ctx, id)
}

func (s *sqliteStore) GetGoalByID(ctx context.Context, id string) (*model.Goal, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("goal", id)
		}
		return nil, fmt.Errorf("sqlite: getting goal %s: %w", id, err)
	}
	return g, nil
}

// UpdateGoal applies only the supplied fields; omitted fields keep their
// stored values. Ownership is NOT checked here — the service layer compares
// the goal's user ID against the caller before any write reaches the store.
func (s *sqliteStore) UpdateGoal(ctx context.Context, id string, upd GoalUpdate) (*model.Goal, error) {
	setClauses := make([]string, 0, 8)
	args := make([]any, 0, 9)

	if upd.Title != nil {
		setClauses = append(setClauses, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		setClauses = append(setClauses, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.VirtueID != nil {
		setClauses = append(setClauses, "virtue_id = ?")
		args = append(args, *upd.VirtueID)
	}
	if upd.SDGIDs != nil {
		encoded, err := encodeJSON(*upd.SDGIDs)
		if err != nil {
			return nil, err
		}
		setClauses = append(setClauses, "sdg_ids = ?")
		args = append(args, encoded)
	}
	if upd.Progress != nil {
		setClauses = append(setClauses, "progress = ?")
		args = append(args, *upd.Progress)
	}
	if upd.Completed != nil {
		setClauses = append(setClauses, "completed = ?")
		args = append(args, *upd.Completed)
	}
	if upd.Target != nil {
		setClauses = append(setClauses, "target = ?")
		args = append(args, *upd.Target)
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now())
	args = append(args, id)

	result, err := s.conn.ExecContext(ctx,
		`UPDATE goals SET `+strings.Join(setClauses, ", ")+` WHERE id = ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating goal %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return nil, apperror.NotFound("goal", id)
	}

	return s.GetGoalByID(ctx, id)
}

// DeleteGoal removes a goal by ID. Deleting a goal that doesn't exist is
// not an error — the bool tells the caller whether a row was removed.
func (s *sqliteStore) DeleteGoal(ctx context.Context, id string) (bool, error) {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting goal %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return affected > 0, nil
}
