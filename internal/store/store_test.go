package store

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =========================================================================
// MODE SELECTOR TESTS
// =========================================================================

func TestOpen_ForceEmbeddedWinsOverFullRemoteConfig(t *testing.T) {
	// A reachable remote service must be IGNORED when the embedded flag is
	// set — the flag is the operator's override.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := Open(Options{
		ForceEmbedded:    true,
		DBPath:           ":memory:",
		RemoteURL:        srv.URL,
		RemoteAnonKey:    "anon",
		RemoteServiceKey: "service",
	}, testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if s.Mode() != ModeEmbedded {
		t.Errorf("Mode() = %q, want %q", s.Mode(), ModeEmbedded)
	}
}

func TestOpen_IncompleteRemoteConfigSelectsEmbedded(t *testing.T) {
	// Any missing credential means remote mode isn't even attempted.
	tests := []struct {
		name string
		opts Options
	}{
		{"no URL", Options{RemoteAnonKey: "anon", RemoteServiceKey: "service"}},
		{"no anon key", Options{RemoteURL: "http://example.invalid", RemoteServiceKey: "service"}},
		{"no service key", Options{RemoteURL: "http://example.invalid", RemoteAnonKey: "anon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.DBPath = ":memory:"
			s, err := Open(tt.opts, testLogger())
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer s.Close()

			if s.Mode() != ModeEmbedded {
				t.Errorf("Mode() = %q, want %q", s.Mode(), ModeEmbedded)
			}
		})
	}
}

func TestOpen_UnreachableRemoteFallsBackToEmbedded(t *testing.T) {
	// Full credentials but the service is down: startup must still succeed,
	// on the embedded backend.
	s, err := Open(Options{
		DBPath:           ":memory:",
		RemoteURL:        "http://127.0.0.1:1", // nothing listens here
		RemoteAnonKey:    "anon",
		RemoteServiceKey: "service",
	}, testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v, want fallback instead", err)
	}
	defer s.Close()

	if s.Mode() != ModeEmbedded {
		t.Errorf("Mode() = %q, want %q", s.Mode(), ModeEmbedded)
	}
}

func TestOpen_MalformedRemoteURLFallsBackToEmbedded(t *testing.T) {
	s, err := Open(Options{
		DBPath:           ":memory:",
		RemoteURL:        "not-a-url",
		RemoteAnonKey:    "anon",
		RemoteServiceKey: "service",
	}, testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v, want fallback instead", err)
	}
	defer s.Close()

	if s.Mode() != ModeEmbedded {
		t.Errorf("Mode() = %q, want %q", s.Mode(), ModeEmbedded)
	}
}

func TestOpen_ReachableRemoteSelectsRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := Open(Options{
		DBPath:           ":memory:",
		RemoteURL:        srv.URL,
		RemoteAnonKey:    "anon",
		RemoteServiceKey: "service",
	}, testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if s.Mode() != ModeRemote {
		t.Errorf("Mode() = %q, want %q", s.Mode(), ModeRemote)
	}

	// The remote backend is the one that carries the delegated-credential
	// capability.
	if _, ok := s.(Authenticator); !ok {
		t.Error("remote store does not implement Authenticator")
	}
}
