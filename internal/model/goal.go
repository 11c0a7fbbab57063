package model

import "time"

// Goal represents a learning goal owned by exactly one user.
//
// UserID is an immutable foreign key — a goal can only be mutated or deleted
// by its owner, and the service layer compares UserID against the resolved
// caller before any write.
//
// SDGIDs is the ordered list of Sustainable Development Goal identifiers the
// goal contributes to. In the embedded store it is persisted as a JSON text
// blob (see store/sqlite), but callers always see the decoded slice.
type Goal struct {
	ID          string    `json:"id"          db:"id"`
	UserID      string    `json:"userId"      db:"user_id"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"`
	VirtueID    string    `json:"virtueId"    db:"virtue_id"`
	SDGIDs      []string  `json:"sdgIds"      db:"sdg_ids"`
	Progress    int       `json:"progress"    db:"progress"`
	Completed   bool      `json:"completed"   db:"completed"`
	Target      int       `json:"target"      db:"target"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}
