package model

import "time"

// Lesson is a single unit of course content. The schema is owned by the
// content authors; the backend stores and serves it without interpretation.
type Lesson struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
	Duration string `json:"duration,omitempty"`
	Type     string `json:"type,omitempty"` // "reading", "video", "quiz", ...
}

// Course is a read-only catalogue entry. There is no create/update API —
// courses are loaded out of band (see cmd/seed) or live in the remote
// service's courses collection.
type Course struct {
	ID          string    `json:"id"          db:"id"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category"    db:"category"`
	Duration    string    `json:"duration"    db:"duration"`
	Level       string    `json:"level"       db:"level"`
	Lessons     []Lesson  `json:"lessons"     db:"lessons"`
	Image       string    `json:"image"       db:"image"`
	Instructor  string    `json:"instructor"  db:"instructor"`
	Tags        []string  `json:"tags"        db:"tags"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}
