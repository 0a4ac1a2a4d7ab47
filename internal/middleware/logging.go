package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/docuvend/download-gate/internal/logging"
)

// loggingRecorder captures the response status for the access log line.
type loggingRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (r *loggingRecorder) WriteHeader(code int) {
	if !r.written {
		r.statusCode = code
		r.written = true
		r.ResponseWriter.WriteHeader(code)
	}
}

func (r *loggingRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.statusCode = http.StatusOK
		r.written = true
	}
	return r.ResponseWriter.Write(b)
}

// HTTPLogging logs one line per request at debug level with masked query
// parameters. Bodies are never logged on this surface: every interesting
// request carries a token or an email.
func HTTPLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !logger.Enabled(r.Context(), slog.LevelDebug) {
				next.ServeHTTP(w, r)
				return
			}

			rec := &loggingRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r)

			logger.Debug("http request",
				"request_id", GetRequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"query", logging.MaskQuery(r.URL.RawQuery),
				"status", rec.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}
