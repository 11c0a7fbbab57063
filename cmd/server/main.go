// Package main is the entry point for the micro-academy API server.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main" package.
// The main package should be kept minimal — its job is to:
// 1. Read configuration (from env vars / .env)
// 2. Create dependencies (logger, the persistence store)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
// This separation makes the app testable and its components reusable.
//
// WHY cmd/server/?
// The cmd/ directory is a Go convention for executable entry points.
// This project has two executables: cmd/server (the API) and cmd/seed
// (loads course content into an embedded database). Each gets its own
// directory with its own main.go.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/micro-academy/internal/config"
	"github.com/sakif/micro-academy/internal/server"
	"github.com/sakif/micro-academy/internal/store"
)

func main() {
	// === 1. SET UP LOGGING ===
	// slog.New creates a structured logger. slog.NewTextHandler outputs human-readable logs.
	// In production, you'd use LevelInfo or LevelWarn to reduce noise.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// === 2. READ CONFIGURATION ===
	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 3. ENSURE THE DATA DIRECTORY EXISTS ===
	// Even a remote-configured deployment needs this: if the remote service
	// is unreachable at boot, the store falls back to the embedded file.
	// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create data directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// === 4. OPEN THE STORE ===
	// The persistence mode (embedded vs remote) is decided exactly once,
	// here at startup. Everything past this line is mode-oblivious.
	st, err := store.Open(store.Options{
		ForceEmbedded:    cfg.ForceEmbedded,
		DBPath:           cfg.DBPath,
		RemoteURL:        cfg.RemoteURL,
		RemoteAnonKey:    cfg.RemoteAnonKey,
		RemoteServiceKey: cfg.RemoteServiceKey,
	}, logger)
	if err != nil {
		logger.Error("failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 5. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, st, logger)
	if err != nil {
		st.Close()
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	// and closes the store on the way out.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
