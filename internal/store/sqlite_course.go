package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/micro-academy/internal/apperror"
	"github.com/sakif/micro-academy/internal/model"
)

const courseColumns = `id, title, description, category, duration, level, lessons, image, instructor, tags, created_at`

func scanCourse(row interface{ Scan(...any) error }) (*model.Course, error) {
	var (
		c             model.Course
		lessons, tags string
	)
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.Category, &c.Duration, &c.Level,
		&lessons, &c.Image, &c.Instructor, &tags, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Lessons = []model.Lesson{}
	c.Tags = []string{}
	if err := decodeJSON(lessons, &c.Lessons); err != nil {
		return nil, err
	}
	if err := decodeJSON(tags, &c.Tags); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *sqliteStore) ListCourses(ctx context.Context) ([]model.Course, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+courseColumns+` FROM courses ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing courses: %w", err)
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning course row: %w", err)
		}
		courses = append(courses, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating courses: %w", err)
	}

	return courses, nil
}

func (s *sqliteStore) GetCourseByID(ctx context.Context, id string) (*model.Course, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = ?`, id)
	c, err := scanCourse(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("course", id)
		}
		return nil, fmt.Errorf("sqlite: getting course %s: %w", id, err)
	}
	return c, nil
}

// InsertCourse loads one catalogue entry. Courses have no API write path;
// this exists for the seed tool and for tests (see CourseWriter).
func (s *sqliteStore) InsertCourse(ctx context.Context, course *model.Course) error {
	courseLessons := course.Lessons
	if courseLessons == nil {
		courseLessons = []model.Lesson{}
	}
	courseTags := course.Tags
	if courseTags == nil {
		courseTags = []string{}
	}

	lessons, err := encodeJSON(courseLessons)
	if err != nil {
		return err
	}
	tags, err := encodeJSON(courseTags)
	if err != nil {
		return err
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO courses (id, title, description, category, duration, level, lessons, image, instructor, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		course.ID, course.Title, course.Description, course.Category,
		course.Duration, course.Level, lessons, course.Image, course.Instructor, tags,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting course %s: %w", course.ID, err)
	}
	return nil
}
