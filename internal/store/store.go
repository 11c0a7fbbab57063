// Package store is the persistence adapter: one uniform data-access
// interface with two implementing backends selected once at startup.
//
// THE DUAL-BACKEND PROBLEM:
// The app can persist either to an embedded SQLite file (this process owns
// identity and password hashes) or to a remote managed service (which owns
// its own user identity and credential verification). Every operation is
// therefore defined twice — once per backend — behind the single Store
// interface, so nothing above this package ever branches on the active
// mode. Scattering `if embedded { ... } else { ... }` at each call site is
// exactly the bug farm this interface exists to prevent.
//
// The two implementations live in this package as sibling files
// (sqlite_*.go, remote_*.go) so the selector below can construct either
// without an import cycle.
package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sakif/micro-academy/internal/model"
)

// Mode identifies which backend a Store routes to. It is decided once, at
// Open, and never changes for the process lifetime.
type Mode string

const (
	ModeEmbedded Mode = "embedded"
	ModeRemote   Mode = "remote"
)

// ErrPasswordHashUnavailable is returned by GetUserPasswordHash in remote
// mode, where the managed service performs credential checks itself and
// never exposes stored hashes. Callers are expected to branch on Mode()
// before asking; hitting this error means they didn't.
var ErrPasswordHashUnavailable = errors.New("store: password hash not available in remote mode")

// UserUpdate is a partial-update payload for a user record. Nil fields are
// left untouched; non-nil fields replace the stored value. Preferences here
// is a full value for the column — additive merging is the service layer's
// job (it reads, merges, then writes).
type UserUpdate struct {
	Name        *string
	Preferences *map[string]any
	Goals       *[]any
	Progress    *[]any
}

// GoalUpdate is a partial-update payload for a goal. Same nil semantics as
// UserUpdate. UserID is deliberately absent: goal ownership is immutable.
type GoalUpdate struct {
	Title       *string
	Description *string
	VirtueID    *string
	SDGIDs      *[]string
	Progress    *int
	Completed   *bool
	Target      *int
}

// Store is the uniform persistence interface. Lookups signal a plain miss
// with an error wrapping apperror.ErrNotFound — a miss is an expected
// outcome, never a failure the caller has to treat as exceptional.
type Store interface {
	// Mode reports which backend is active.
	Mode() Mode

	// CreateUser inserts a profile row with empty-default containers for
	// preferences, goals and progress. In embedded mode passwordHash is the
	// locally computed bcrypt hash; in remote mode it is empty (the service
	// owns credentials). The returned record never carries the hash.
	CreateUser(ctx context.Context, id, email, name, passwordHash string) (*model.User, error)

	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// GetUserPasswordHash is an embedded-only capability; see
	// ErrPasswordHashUnavailable.
	GetUserPasswordHash(ctx context.Context, id string) (string, error)

	// UpdateUser applies only the supplied fields and refreshes the update
	// timestamp. It returns the full record as stored after the write.
	UpdateUser(ctx context.Context, id string, upd UserUpdate) (*model.User, error)

	ListGoals(ctx context.Context, userID string) ([]model.Goal, error)

	// CreateGoal inserts a goal, generating a UUID when the caller left the
	// ID empty, and returns the stored record.
	CreateGoal(ctx context.Context, goal *model.Goal) (*model.Goal, error)

	GetGoalByID(ctx context.Context, id string) (*model.Goal, error)
	UpdateGoal(ctx context.Context, id string, upd GoalUpdate) (*model.Goal, error)

	// DeleteGoal removes a goal by ID, idempotently: the bool reports
	// whether a row existed. A missing row is NOT an error.
	DeleteGoal(ctx context.Context, id string) (bool, error)

	ListCourses(ctx context.Context) ([]model.Course, error)
	GetCourseByID(ctx context.Context, id string) (*model.Course, error)

	Close() error
}

// CourseWriter is the out-of-band course loading capability. Only the
// embedded backend implements it (remote courses are managed inside the
// service); the seed tool type-asserts for it.
type CourseWriter interface {
	InsertCourse(ctx context.Context, course *model.Course) error
}

// Authenticator is the delegated-credential capability. Only the remote
// backend implements it: the managed service registers accounts and
// verifies passwords itself, handing back its own user IDs. The auth
// service type-asserts for it once and uses local bcrypt otherwise.
//
// ok=false means the service rejected the credentials or registration
// cleanly; err is reserved for transport and protocol failures.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (userID string, ok bool, err error)
	SignIn(ctx context.Context, email, password string) (userID string, ok bool, err error)
}

// Options carries the Mode Selector inputs.
type Options struct {
	// ForceEmbedded pins the embedded backend regardless of remote config.
	ForceEmbedded bool

	// Path of the embedded SQLite database file.
	DBPath string

	// Remote service credentials. All three must be non-empty for remote
	// mode to be attempted.
	RemoteURL        string
	RemoteAnonKey    string
	RemoteServiceKey string
}

// Open decides the persistence mode and constructs the matching Store.
//
// Policy: embedded if ForceEmbedded is set OR any remote credential is
// missing. Otherwise remote is attempted — and if constructing the remote
// client fails for ANY reason (malformed URL, unreachable service), Open
// logs a warning and falls back to the embedded backend instead of failing
// startup. The process must always be able to serve requests locally even
// when the managed service is down at boot. The decision is made exactly
// once; there is no retry loop and no mid-process switch.
func Open(opts Options, logger *slog.Logger) (Store, error) {
	remoteConfigured := opts.RemoteURL != "" && opts.RemoteAnonKey != "" && opts.RemoteServiceKey != ""

	if !opts.ForceEmbedded && remoteConfigured {
		s, err := newRemoteStore(opts.RemoteURL, opts.RemoteAnonKey, opts.RemoteServiceKey)
		if err == nil {
			logger.Info("persistence mode selected", slog.String("mode", string(ModeRemote)))
			return s, nil
		}
		logger.Warn("remote store unavailable, falling back to embedded",
			slog.String("error", err.Error()),
		)
	}

	s, err := newSQLiteStore(opts.DBPath)
	if err != nil {
		return nil, err
	}
	logger.Info("persistence mode selected",
		slog.String("mode", string(ModeEmbedded)),
		slog.String("path", opts.DBPath),
	)
	return s, nil
}
