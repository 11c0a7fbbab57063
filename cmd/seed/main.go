// Package main loads starter course content into an embedded database.
//
// Courses have no write API — the catalogue is read-only from the app's
// point of view. In remote mode the managed service's own tooling owns the
// courses collection; in embedded mode THIS tool is the loading path:
//
//	go run ./cmd/seed            # seeds data/academy.db (or DB_PATH)
//
// Seeding is idempotent in effect: running it against a database that
// already has the courses simply reports the insert conflicts and moves on.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rs/xid"

	"github.com/sakif/micro-academy/internal/config"
	"github.com/sakif/micro-academy/internal/model"
	"github.com/sakif/micro-academy/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Error("failed to create data directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Always the embedded backend: seeding a remote deployment would bypass
	// the service's own content pipeline.
	st, err := store.Open(store.Options{
		ForceEmbedded: true,
		DBPath:        cfg.DBPath,
	}, logger)
	if err != nil {
		logger.Error("failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	// InsertCourse is an embedded-only capability; the interface assertion
	// documents that rather than widening Store for everyone.
	writer, ok := st.(store.CourseWriter)
	if !ok {
		logger.Error("store does not support course loading")
		os.Exit(1)
	}

	ctx := context.Background()
	seeded := 0
	for _, course := range starterCourses() {
		if err := writer.InsertCourse(ctx, &course); err != nil {
			logger.Warn("skipping course",
				slog.String("title", course.Title),
				slog.String("error", err.Error()),
			)
			continue
		}
		seeded++
		logger.Info("seeded course",
			slog.String("id", course.ID),
			slog.String("title", course.Title),
		)
	}

	logger.Info("seed complete",
		slog.Int("seeded", seeded),
		slog.String("database", cfg.DBPath),
	)
}

// starterCourses is the built-in catalogue. IDs are xid strings: sortable by
// creation time, URL-safe, and stable enough for clients to bookmark.
func starterCourses() []model.Course {
	return []model.Course{
		{
			ID:          xid.New().String(),
			Title:       "Climate Action Fundamentals",
			Description: "What drives the climate crisis and which levers individuals, cities and industries actually have.",
			Category:    "environment",
			Duration:    "3 hours",
			Level:       "beginner",
			Instructor:  "Dr. Amara Okafor",
			Tags:        []string{"sdg-13", "climate", "sustainability"},
			Lessons: []model.Lesson{
				{ID: xid.New().String(), Title: "The carbon cycle in 20 minutes", Type: "video", Duration: "20m"},
				{ID: xid.New().String(), Title: "Reading an emissions inventory", Type: "reading", Duration: "30m"},
				{ID: xid.New().String(), Title: "Checkpoint: sources and sinks", Type: "quiz", Duration: "15m"},
			},
		},
		{
			ID:          xid.New().String(),
			Title:       "Clean Water and Sanitation",
			Description: "How water systems work, why two billion people lack safe water, and what good interventions look like.",
			Category:    "environment",
			Duration:    "2.5 hours",
			Level:       "beginner",
			Instructor:  "Prof. Lena Svensson",
			Tags:        []string{"sdg-6", "water", "public-health"},
			Lessons: []model.Lesson{
				{ID: xid.New().String(), Title: "From source to tap", Type: "reading", Duration: "25m"},
				{ID: xid.New().String(), Title: "Case study: decentralised treatment", Type: "video", Duration: "35m"},
			},
		},
		{
			ID:          xid.New().String(),
			Title:       "Quality Education for All",
			Description: "Evidence-based approaches to closing learning gaps, from early literacy to adult re-skilling.",
			Category:    "society",
			Duration:    "4 hours",
			Level:       "intermediate",
			Instructor:  "Miguel Torres",
			Tags:        []string{"sdg-4", "education", "policy"},
			Lessons: []model.Lesson{
				{ID: xid.New().String(), Title: "What the literacy data says", Type: "reading", Duration: "40m"},
				{ID: xid.New().String(), Title: "Designing a tutoring programme", Type: "video", Duration: "45m"},
				{ID: xid.New().String(), Title: "Checkpoint: interventions that scale", Type: "quiz", Duration: "20m"},
			},
		},
		{
			ID:          xid.New().String(),
			Title:       "Responsible Consumption in Practice",
			Description: "Life-cycle thinking applied to everyday choices: food, clothing, electronics and the supply chains behind them.",
			Category:    "lifestyle",
			Duration:    "2 hours",
			Level:       "beginner",
			Instructor:  "Dr. Amara Okafor",
			Tags:        []string{"sdg-12", "consumption", "supply-chains"},
			Lessons: []model.Lesson{
				{ID: xid.New().String(), Title: "Life-cycle assessment basics", Type: "reading", Duration: "30m"},
				{ID: xid.New().String(), Title: "Auditing your own footprint", Type: "exercise", Duration: "45m"},
			},
		},
	}
}
