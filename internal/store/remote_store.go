// Remote backend, part 2: the Store implementation over remoteClient.
//
// Collections mirror the embedded schema (users, goals, courses) but the
// service stores structured fields natively as JSON — no text-blob encoding
// on this side. Row types below carry the service's snake_case column names
// and convert to and from the model structs at this one boundary.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sakif/micro-academy/internal/apperror"
	"github.com/sakif/micro-academy/internal/model"
)

type remoteStore struct {
	client *remoteClient
}

// compile-time checks: *remoteStore is a Store and an Authenticator.
var (
	_ Store         = (*remoteStore)(nil)
	_ Authenticator = (*remoteStore)(nil)
)

func newRemoteStore(rawURL, anonKey, serviceKey string) (*remoteStore, error) {
	client, err := newRemoteClient(rawURL, anonKey, serviceKey)
	if err != nil {
		return nil, err
	}
	return &remoteStore{client: client}, nil
}

func (s *remoteStore) Mode() Mode { return ModeRemote }

// Close is a no-op: the remote client holds no persistent connection.
func (s *remoteStore) Close() error { return nil }

// SignUp delegates account creation to the service's auth plane and returns
// the service-issued user ID. ok=false means the service refused the
// registration (e.g. the email is already registered there).
func (s *remoteStore) SignUp(ctx context.Context, email, password string) (string, bool, error) {
	return s.client.signUp(ctx, email, password)
}

// SignIn delegates credential verification to the service's auth plane.
func (s *remoteStore) SignIn(ctx context.Context, email, password string) (string, bool, error) {
	return s.client.signIn(ctx, email, password)
}

// remoteUserRow is the users collection schema on the service side.
type remoteUserRow struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Preferences map[string]any `json:"preferences"`
	Goals       []any          `json:"goals"`
	Progress    []any          `json:"progress"`
	CreatedAt   time.Time      `json:"created_at,omitzero"`
	UpdatedAt   time.Time      `json:"updated_at,omitzero"`
}

func (r remoteUserRow) toModel() *model.User {
	u := &model.User{
		ID:          r.ID,
		Email:       r.Email,
		Name:        r.Name,
		Preferences: r.Preferences,
		Goals:       r.Goals,
		Progress:    r.Progress,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if u.Preferences == nil {
		u.Preferences = map[string]any{}
	}
	if u.Goals == nil {
		u.Goals = []any{}
	}
	if u.Progress == nil {
		u.Progress = []any{}
	}
	return u
}

func decodeUserRow(raw json.RawMessage) (*model.User, error) {
	var r remoteUserRow
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("remote: decoding user row: %w", err)
	}
	return r.toModel(), nil
}

// CreateUser inserts the profile record. The ID comes from the service's
// auth plane (SignUp); passwordHash is ignored — the service owns
// credentials and this collection never sees one.
func (s *remoteStore) CreateUser(ctx context.Context, id, email, name, _ string) (*model.User, error) {
	row, err := s.client.insertRow(ctx, "users", remoteUserRow{
		ID:          id,
		Email:       email,
		Name:        name,
		Preferences: map[string]any{},
		Goals:       []any{},
		Progress:    []any{},
	})
	if err != nil {
		return nil, err
	}
	return decodeUserRow(row)
}

func (s *remoteStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	rows, err := s.client.selectRows(ctx, "users", map[string]string{"email": email})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperror.NotFound("user", email)
	}
	return decodeUserRow(rows[0])
}

func (s *remoteStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	rows, err := s.client.selectRows(ctx, "users", map[string]string{"id": id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperror.NotFound("user", id)
	}
	return decodeUserRow(rows[0])
}

// GetUserPasswordHash has no meaning here: credential checks happen inside
// the service during SignIn and the hash is never exposed.
func (s *remoteStore) GetUserPasswordHash(ctx context.Context, id string) (string, error) {
	return "", ErrPasswordHashUnavailable
}

// UpdateUser sends only the supplied fields, JSON-shaped as-is — the
// service stores structured values natively.
func (s *remoteStore) UpdateUser(ctx context.Context, id string, upd UserUpdate) (*model.User, error) {
	changes := map[string]any{}
	if upd.Name != nil {
		changes["name"] = *upd.Name
	}
	if upd.Preferences != nil {
		changes["preferences"] = *upd.Preferences
	}
	if upd.Goals != nil {
		changes["goals"] = *upd.Goals
	}
	if upd.Progress != nil {
		changes["progress"] = *upd.Progress
	}
	changes["updated_at"] = time.Now().UTC()

	rows, err := s.client.updateRows(ctx, "users", map[string]string{"id": id}, changes)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperror.NotFound("user", id)
	}
	return decodeUserRow(rows[0])
}

// remoteGoalRow is the goals collection schema on the service side.
type remoteGoalRow struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VirtueID    string    `json:"virtue_id"`
	SDGIDs      []string  `json:"sdg_ids"`
	Progress    int       `json:"progress"`
	Completed   bool      `json:"completed"`
	Target      int       `json:"target"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

func (r remoteGoalRow) toModel() model.Goal {
	g := model.Goal{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		VirtueID:    r.VirtueID,
		SDGIDs:      r.SDGIDs,
		Progress:    r.Progress,
		Completed:   r.Completed,
		Target:      r.Target,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if g.SDGIDs == nil {
		g.SDGIDs = []string{}
	}
	return g
}

func decodeGoalRow(raw json.RawMessage) (*model.Goal, error) {
	var r remoteGoalRow
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("remote: decoding goal row: %w", err)
	}
	g := r.toModel()
	return &g, nil
}

func (s *remoteStore) ListGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	rows, err := s.client.selectRows(ctx, "goals", map[string]string{"user_id": userID})
	if err != nil {
		return nil, err
	}

	goals := make([]model.Goal, 0, len(rows))
	for _, raw := range rows {
		g, err := decodeGoalRow(raw)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, nil
}

func (s *remoteStore) CreateGoal(ctx context.Context, goal *model.Goal) (*model.Goal, error) {
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

	row, err := s.client.insertRow(ctx, "goals", remoteGoalRow{
		ID:          id,
		UserID:      goal.UserID,
		Title:       goal.Title,
		Description: goal.Description,
		VirtueID:    goal.VirtueID,
		SDGIDs:      sdgIDs,
		Progress:    goal.Progress,
		Completed:   goal.Completed,
		Target:      target,
	})
	if err != nil {
		return nil, err
	}
	return decodeGoalRow(row)
}

func (s *remoteStore) GetGoalByID(ctx context.Context, id string) (*model.Goal, error) {
	rows, err := s.client.selectRows(ctx, "goals", map[string]string{"id": id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperror.NotFound("goal", id)
	}
	return decodeGoalRow(rows[0])
}

func (s *remoteStore) UpdateGoal(ctx context.Context, id string, upd GoalUpdate) (*model.Goal, error) {
	changes := map[string]any{}
	if upd.Title != nil {
		changes["title"] = *upd.Title
	}
	if upd.Description != nil {
		changes["description"] = *upd.Description
	}
	if upd.VirtueID != nil {
		changes["virtue_id"] = *upd.VirtueID
	}
	if upd.SDGIDs != nil {
		changes["sdg_ids"] = *upd.SDGIDs
	}
	if upd.Progress != nil {
		changes["progress"] = *upd.Progress
	}
	if upd.Completed != nil {
		changes["completed"] = *upd.Completed
	}
	if upd.Target != nil {
		changes["target"] = *upd.Target
	}
	changes["updated_at"] = time.Now().UTC()

	rows, err := s.client.updateRows(ctx, "goals", map[string]string{"id": id}, changes)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperror.NotFound("goal", id)
	}
	return decodeGoalRow(rows[0])
}

func (s *remoteStore) DeleteGoal(ctx context.Context, id string) (bool, error) {
	rows, err := s.client.deleteRows(ctx, "goals", map[string]string{"id": id})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// remoteCourseRow is the courses collection schema on the service side.
type remoteCourseRow struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Duration    string         `json:"duration"`
	Level       string         `json:"level"`
	Lessons     []model.Lesson `json:"lessons"`
	Image       string         `json:"image"`
	Instructor  string         `json:"instructor"`
	Tags        []string       `json:"tags"`
	CreatedAt   time.Time      `json:"created_at,omitzero"`
}

func (r remoteCourseRow) toModel() model.Course {
	c := model.Course{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Duration:    r.Duration,
		Level:       r.Level,
		Lessons:     r.Lessons,
		Image:       r.Image,
		Instructor:  r.Instructor,
		Tags:        r.Tags,
		CreatedAt:   r.CreatedAt,
	}
	if c.Lessons == nil {
		c.Lessons = []model.Lesson{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c
}

// ListCourses reads the courses collection. A deployment without the
// collection yet (the client maps that 404 to zero rows) yields an empty
// catalogue, not an error.
func (s *remoteStore) ListCourses(ctx context.Context) ([]model.Course, error) {
	rows, err := s.client.selectRows(ctx, "courses", nil)
	if err != nil {
		return nil, err
	}

	courses := make([]model.Course, 0, len(rows))
	for _, raw := range rows {
		var r remoteCourseRow
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("remote: decoding course row: %w", err)
		}
		courses = append(courses, r.toModel())
	}
	return courses, nil
}

func (s *remoteStore) GetCourseByID(ctx context.Context, id string) (*model.Course, error) {
	rows, err := s.client.selectRows(ctx, "courses", map[string]string{"id": id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperror.NotFound("course", id)
	}

	var r remoteCourseRow
	if err := json.Unmarshal(rows[0], &r); err != nil {
		return nil, fmt.Errorf("remote: decoding course row: %w", err)
	}
	c := r.toModel()
	return &c, nil
}
