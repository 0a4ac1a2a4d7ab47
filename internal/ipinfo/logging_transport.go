package ipinfo

import (
	"log/slog"
	"net/http"
	"time"
)

// LoggingTransport wraps an http.RoundTripper and logs each lookup with its
// latency. Echo requests carry no credentials, so nothing is redacted.
type LoggingTransport struct {
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.transport().RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		t.Logger.Warn("ip lookup failed",
			"url", req.URL.String(),
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	t.Logger.Debug("ip lookup",
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
	)
	return resp, nil
}

func (t *LoggingTransport) transport() http.RoundTripper {
	if t.Transport != nil {
		return t.Transport
	}
	return http.DefaultTransport
}
