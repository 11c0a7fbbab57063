// Package server is the composition root of the API: it builds the router,
// wires every handler to its service, mounts the middleware chain, and owns
// the listen/shutdown lifecycle.
//
// Everything the app needs is assembled in exactly one place (New and
// setupRoutes). That keeps main.go down to "load config, open the store,
// start the server", and it lets the test suite stand up the complete
// application in-process: server_test.go calls New with an in-memory store
// and exercises the real router, never a mock of it.
//
// The dependency flow runs strictly downward:
//
//	config → store.Open (persistence mode decided there, once) → Server
//	New → token/password services → domain services → handlers → routes
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/micro-academy/internal/auth"
	"github.com/sakif/micro-academy/internal/config"
	"github.com/sakif/micro-academy/internal/handler"
	"github.com/sakif/micro-academy/internal/middleware"
	"github.com/sakif/micro-academy/internal/service"
	"github.com/sakif/micro-academy/internal/store"
)

// Server bundles the router with the dependencies it was wired from.
//
// The Server owns the store: on shutdown Start() closes it, which in
// embedded mode flushes pending writes and releases the database file lock.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	store  store.Store
	logger *slog.Logger
}

// New creates a Server wired on top of an already-opened store.
//
// The store arrives ready-made because the persistence mode decision belongs
// to startup (store.Open in main), not to HTTP wiring — the server neither
// knows nor cares which backend it got.
func New(cfg *config.Config, st store.Store, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		store:  st,
		logger: logger,
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// setupRoutes builds the whole HTTP surface:
//
// GET    /                              → health (also the root probe)
// GET    /health                        → health + active persistence mode
// POST   /api/v1/auth/signup            → register + sign in
// POST   /api/v1/auth/login             → sign in
// POST   /api/v1/auth/refresh           → re-issue token        [auth]
// GET    /api/v1/users/me               → own profile           [auth]
// PUT    /api/v1/users/me               → partial update, prefs merge [auth]
// PUT    /api/v1/users/me/preferences   → full prefs replace    [auth]
// GET    /api/v1/users/me/goals         → legacy goals container [auth]
// PUT    /api/v1/users/me/goals         → replace legacy container [auth]
// GET    /api/v1/goals                  → own goals             [auth]
// POST   /api/v1/goals                  → create goal           [auth]
// PUT    /api/v1/goals/{goalID}         → update own goal       [auth]
// DELETE /api/v1/goals/{goalID}         → delete own goal       [auth]
// GET    /api/v1/courses                → course catalogue
// GET    /api/v1/courses/{courseID}     → single course
//
// Middleware runs in the order it is mounted: RequestID first so the Logger
// after it can report the ID, Recoverer after the Logger so a panic still
// produces a log line, CORS last so preflights see the full chain.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID) // X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // client IP from X-Forwarded-For
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer) // panic → 500, not a dead process

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOriginList(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Auth plumbing. Token service construction can fail (bad algorithm or
	// a too-short secret), and that failure must abort startup.
	tokens, err := auth.NewTokenService(s.cfg.JWTSecret, s.cfg.JWTAlgorithm, s.cfg.TokenTTL())
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	requireUser := auth.RequireUser(tokens, s.store)

	// Services sit between handlers and the store: handlers never touch the
	// store directly, services never touch HTTP.
	authService := service.NewAuthService(s.store, tokens, passwords, s.logger)
	userService := service.NewUserService(s.store, s.logger)
	goalService := service.NewGoalService(s.store, s.logger)
	courseService := service.NewCourseService(s.store, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	goalHandler := handler.NewGoalHandler(goalService, s.logger)
	courseHandler := handler.NewCourseHandler(courseService, s.logger)
	healthHandler := handler.NewHealthHandler(s.store.Mode())

	s.router.Get("/", healthHandler.Health)
	s.router.Get("/health", healthHandler.Health)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.With(requireUser).Post("/refresh", authHandler.Refresh)
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/", userHandler.Me)
			r.Put("/", userHandler.UpdateMe)
			r.Put("/preferences", userHandler.UpdatePreferences)
			r.Get("/goals", userHandler.Goals)
			r.Put("/goals", userHandler.UpdateGoals)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/", goalHandler.List)
			r.Post("/", goalHandler.Create)
			r.Put("/{goalID}", goalHandler.Update)
			r.Delete("/{goalID}", goalHandler.Delete)
		})

		r.Get("/courses", courseHandler.List)
		r.Get("/courses/{courseID}", courseHandler.Get)
	})

	return nil
}

// Router exposes the configured router, mainly so tests can drive the full
// HTTP surface with httptest without binding a port.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the store (embedded mode: flushes WAL, releases the file lock)
//
// The `defer s.store.Close()` ensures step 3 happens even if something panics.
func (s *Server) Start() error {
	defer s.store.Close()

	// Timeouts protect against slow-reading or slow-writing clients
	// holding connections open indefinitely.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// SIGINT is Ctrl-C; SIGTERM is what process managers send on stop.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	// Serve from a goroutine so this function can sit in the select below.
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.cfg.Port)),
			slog.String("mode", string(s.store.Mode())),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Whichever happens first: the listener dies, or the OS asks us to stop.
	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// In-flight requests get 30 seconds to finish before the
		// listener is torn down.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
