package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"time"
)

// Opaque token path segments and numeric IDs are collapsed so metric labels
// never carry credentials and cardinality stays bounded.
var (
	tokenSegment   = regexp.MustCompile(`/[0-9A-Za-z_-]{24,}`)
	numericSegment = regexp.MustCompile(`/(\d+)`)
)

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.written {
		r.statusCode = code
		r.written = true
		r.ResponseWriter.WriteHeader(code)
	}
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.statusCode = http.StatusOK
		r.written = true
	}
	return r.ResponseWriter.Write(b)
}

// Middleware records request latency per method, normalized path and status.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		RecordRequestDuration(
			r.Method,
			NormalizePath(r.URL.Path),
			strconv.Itoa(recorder.statusCode),
			time.Since(start).Seconds(),
		)
	})
}

// NormalizePath replaces token-shaped and numeric path segments with
// placeholders, e.g. /api/downloads/3f9a.../verify -> /api/downloads/:token/verify.
func NormalizePath(path string) string {
	path = tokenSegment.ReplaceAllString(path, "/:token")
	return numericSegment.ReplaceAllString(path, "/:id")
}
