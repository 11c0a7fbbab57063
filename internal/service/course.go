package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/micro-academy/internal/model"
	"github.com/sakif/micro-academy/internal/store"
)

// CourseService serves the read-only course catalogue. Courses have no
// write API — content is loaded out of band (cmd/seed in embedded mode, the
// managed service's own tooling in remote mode).
type CourseService struct {
	store  store.Store
	logger *slog.Logger
}

func NewCourseService(st store.Store, logger *slog.Logger) *CourseService {
	return &CourseService{store: st, logger: logger}
}

// List returns the full catalogue. A deployment with no courses yet yields
// an empty slice.
func (s *CourseService) List(ctx context.Context) ([]model.Course, error) {
	courses, err := s.store.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/course: listing courses: %w", err)
	}
	return courses, nil
}

// Get returns a single course; a miss surfaces as apperror.ErrNotFound.
func (s *CourseService) Get(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.store.GetCourseByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/course: loading course %s: %w", id, err)
	}
	return course, nil
}
