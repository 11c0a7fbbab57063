// Package middleware holds the request-logging middleware.
//
// Middleware in Go is just a function from handler to handler:
//
//	func(next http.Handler) http.Handler
//
// The returned handler does its extra work (here: timing and logging), calls
// next.ServeHTTP, then finishes up once the real handler returns. Chi composes
// a chain of these with router.Use.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// statusRecorder wraps http.ResponseWriter so the log line can report what
// the handler actually sent. The stock ResponseWriter is write-only: once
// WriteHeader runs there is no way to ask it for the status afterwards, so we
// remember it on the way through.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += int64(n)
	return n, err
}

// Logger emits one structured slog line per completed request: method, path,
// status, duration, response size, and the chi request ID.
//
// The request ID comes from chi's RequestID middleware, which must be mounted
// earlier in the chain; it matches the X-Request-ID header the client saw, so
// a user-reported failure can be grepped straight to its log line.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Status defaults to 200: handlers that never call
			// WriteHeader get it implicitly from the first Write.
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", rec.bytes),
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
