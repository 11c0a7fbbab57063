package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sakif/micro-academy/internal/apperror"
	"github.com/sakif/micro-academy/internal/model"
	"github.com/sakif/micro-academy/internal/store"
)

// FAKES, NOT MOCKS:
// Instead of a mocking framework we use a small hand-written in-memory
// Store. The services under test see real interface behaviour (NotFound
// errors, returned records) without a database, and the tests stay readable
// — no expectation-setup DSL.

type fakeStore struct {
	users  map[string]*model.User // keyed by ID
	hashes map[string]string      // user ID → password hash
	goals  map[string]*model.Goal
	nextID int
}

var _ store.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  map[string]*model.User{},
		hashes: map[string]string{},
		goals:  map[string]*model.Goal{},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (f *fakeStore) Mode() store.Mode { return store.ModeEmbedded }
func (f *fakeStore) Close() error     { return nil }

func (f *fakeStore) CreateUser(_ context.Context, id, email, name, passwordHash string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return nil, apperror.Duplicate("user", "email")
		}
	}
	u := &model.User{
		ID:          id,
		Email:       email,
		Name:        name,
		Preferences: map[string]any{},
		Goals:       []any{},
		Progress:    []any{},
	}
	f.users[id] = u
	f.hashes[id] = passwordHash
	return u, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("user", id)
}

func (f *fakeStore) GetUserPasswordHash(_ context.Context, id string) (string, error) {
	if hash, ok := f.hashes[id]; ok {
		return hash, nil
	}
	return "", apperror.NotFound("user", id)
}

func (f *fakeStore) UpdateUser(_ context.Context, id string, upd store.UserUpdate) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Preferences != nil {
		u.Preferences = *upd.Preferences
	}
	if upd.Goals != nil {
		u.Goals = *upd.Goals
	}
	if upd.Progress != nil {
		u.Progress = *upd.Progress
	}
	return u, nil
}

func (f *fakeStore) ListGoals(_ context.Context, userID string) ([]model.Goal, error) {
	out := []model.Goal{}
	for _, g := range f.goals {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateGoal(_ context.Context, goal *model.Goal) (*model.Goal, error) {
	f.nextID++
	g := *goal
	if g.ID == "" {
		g.ID = fmt.Sprintf("goal-%d", f.nextID)
	}
	if g.Target < 1 {
		g.Target = 1
	}
	if g.SDGIDs == nil {
		g.SDGIDs = []string{}
	}
	f.goals[g.ID] = &g
	return &g, nil
}

func (f *fakeStore) GetGoalByID(_ context.Context, id string) (*model.Goal, error) {
	if g, ok := f.goals[id]; ok {
		return g, nil
	}
	return nil, apperror.NotFound("goal", id)
}

func (f *fakeStore) UpdateGoal(_ context.Context, id string, upd store.GoalUpdate) (*model.Goal, error) {
	g, ok := f.goals[id]
	if !ok {
		return nil, apperror.NotFound("goal", id)
	}
	if upd.Title != nil {
		g.Title = *upd.Title
	}
	if upd.Description != nil {
		g.Description = *upd.Description
	}
	if upd.VirtueID != nil {
		g.VirtueID = *upd.VirtueID
	}
	if upd.SDGIDs != nil {
		g.SDGIDs = *upd.SDGIDs
	}
	if upd.Progress != nil {
		g.Progress = *upd.Progress
	}
	if upd.Completed != nil {
		g.Completed = *upd.Completed
	}
	if upd.Target != nil {
		g.Target = *upd.Target
	}
	return g, nil
}

func (f *fakeStore) DeleteGoal(_ context.Context, id string) (bool, error) {
	if _, ok := f.goals[id]; !ok {
		return false, nil
	}
	delete(f.goals, id)
	return true, nil
}

func (f *fakeStore) ListCourses(_ context.Context) ([]model.Course, error) {
	return []model.Course{}, nil
}

func (f *fakeStore) GetCourseByID(_ context.Context, id string) (*model.Course, error) {
	return nil, apperror.NotFound("course", id)
}

// fakeRemoteStore layers the delegated-credential capability on top of the
// fake, mimicking the remote backend: IT owns the accounts and issues IDs.
type fakeRemoteStore struct {
	*fakeStore
	accounts   map[string]string // email → password
	accountIDs map[string]string // email → issued ID
	issued     int
}

var _ store.Authenticator = (*fakeRemoteStore)(nil)

func newFakeRemoteStore() *fakeRemoteStore {
	return &fakeRemoteStore{
		fakeStore:  newFakeStore(),
		accounts:   map[string]string{},
		accountIDs: map[string]string{},
	}
}

func (f *fakeRemoteStore) Mode() store.Mode { return store.ModeRemote }

func (f *fakeRemoteStore) GetUserPasswordHash(_ context.Context, _ string) (string, error) {
	return "", store.ErrPasswordHashUnavailable
}

func (f *fakeRemoteStore) SignUp(_ context.Context, email, password string) (string, bool, error) {
	if _, taken := f.accounts[email]; taken {
		return "", false, nil
	}
	f.issued++
	id := fmt.Sprintf("remote-%d", f.issued)
	f.accounts[email] = password
	f.accountIDs[email] = id
	return id, true, nil
}

func (f *fakeRemoteStore) SignIn(_ context.Context, email, password string) (string, bool, error) {
	if stored, ok := f.accounts[email]; !ok || stored != password {
		return "", false, nil
	}
	return f.accountIDs[email], true, nil
}
