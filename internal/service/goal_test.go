package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/micro-academy/internal/apperror"
	"github.com/sakif/micro-academy/internal/store"
)

func newGoalFixture(t *testing.T) (*GoalService, *fakeStore) {
	t.Helper()
	st := newFakeStore()
	return NewGoalService(st, testLogger()), st
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestGoalCreate(t *testing.T) {
	svc, _ := newGoalFixture(t)

	goal, err := svc.Create(context.Background(), "u-1", GoalCreate{
		Title:    "  Read 3 papers  ",
		VirtueID: "curiosity",
		SDGIDs:   []string{"sdg-4"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if goal.UserID != "u-1" {
		t.Errorf("UserID = %q, want u-1", goal.UserID)
	}
	if goal.Title != "Read 3 papers" {
		t.Errorf("Title = %q, want trimmed", goal.Title)
	}
	if goal.ID == "" {
		t.Error("Create() did not assign an ID")
	}
}

func TestGoalCreate_Validation(t *testing.T) {
	svc, _ := newGoalFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u-1", GoalCreate{Title: "   "}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("blank title: error = %v, want ErrValidation", err)
	}
	if _, err := svc.Create(ctx, "u-1", GoalCreate{Title: "ok", Progress: -1}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("negative progress: error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// OWNERSHIP TESTS
// =========================================================================

func TestGoalUpdate_OwnerOnly(t *testing.T) {
	svc, _ := newGoalFixture(t)
	ctx := context.Background()

	goal, err := svc.Create(ctx, "owner", GoalCreate{Title: "mine"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	title := "hijacked"
	_, err = svc.Update(ctx, "intruder", goal.ID, store.GoalUpdate{Title: &title})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("foreign Update() error = %v, want ErrForbidden", err)
	}

	// The forbidden attempt must have left the goal untouched.
	unchanged, err := svc.Update(ctx, "owner", goal.ID, store.GoalUpdate{})
	if err != nil {
		t.Fatalf("owner Update() error = %v", err)
	}
	if unchanged.Title != "mine" {
		t.Errorf("Title = %q after rejected update, want %q", unchanged.Title, "mine")
	}
}

func TestGoalDelete_OwnerOnly(t *testing.T) {
	svc, st := newGoalFixture(t)
	ctx := context.Background()

	goal, err := svc.Create(ctx, "owner", GoalCreate{Title: "mine"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(ctx, "intruder", goal.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("foreign Delete() error = %v, want ErrForbidden", err)
	}
	if _, ok := st.goals[goal.ID]; !ok {
		t.Fatal("goal vanished after a forbidden delete")
	}

	if err := svc.Delete(ctx, "owner", goal.ID); err != nil {
		t.Fatalf("owner Delete() error = %v", err)
	}
	if _, ok := st.goals[goal.ID]; ok {
		t.Error("goal still present after the owner deleted it")
	}
}

func TestGoalUpdate_MissingGoalIs404(t *testing.T) {
	svc, _ := newGoalFixture(t)

	title := "anything"
	_, err := svc.Update(context.Background(), "u-1", "ghost", store.GoalUpdate{Title: &title})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() on missing goal: error = %v, want ErrNotFound", err)
	}
}

func TestGoalList_ScopedToCaller(t *testing.T) {
	svc, _ := newGoalFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u-1", GoalCreate{Title: "a"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, "u-2", GoalCreate{Title: "b"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	goals, err := svc.List(ctx, "u-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(goals) != 1 || goals[0].Title != "a" {
		t.Errorf("List() = %+v, want only u-1's goal", goals)
	}
}
