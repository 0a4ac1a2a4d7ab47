package ipinfo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFromRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "198.51.100.4:52001",
			want:       "198.51.100.4",
		},
		{
			name:       "x-forwarded-for wins",
			remoteAddr: "10.0.0.1:443",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-real-ip fallback",
			remoteAddr: "10.0.0.1:443",
			headers:    map[string]string{"X-Real-Ip": "203.0.113.9"},
			want:       "203.0.113.9",
		},
		{
			name:       "garbage forwarded header falls through",
			remoteAddr: "198.51.100.4:52001",
			headers:    map[string]string{"X-Forwarded-For": "unknown"},
			want:       "198.51.100.4",
		},
		{
			name:       "ipv6 remote addr",
			remoteAddr: "[2001:db8::1]:443",
			want:       "2001:db8::1",
		},
		{
			name:       "unparsable remote addr yields empty",
			remoteAddr: "not-an-address",
			want:       "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if got := FromRequest(req); got != tt.want {
				t.Errorf("FromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientLookupJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ip":"203.0.113.50"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ip, err := c.Lookup(context.Background())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if ip != "203.0.113.50" {
		t.Errorf("expected 203.0.113.50, got %q", ip)
	}
}

func TestClientLookupBareString(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("203.0.113.51\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ip, err := c.Lookup(context.Background())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if ip != "203.0.113.51" {
		t.Errorf("expected 203.0.113.51, got %q", ip)
	}
}

func TestClientLookupErrors(t *testing.T) {
	t.Parallel()

	t.Run("non-200 status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		if _, err := NewClient(srv.URL).Lookup(context.Background()); err == nil {
			t.Errorf("expected error for non-200 response")
		}
	})

	t.Run("unparsable body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>busy</html>"))
		}))
		defer srv.Close()

		if _, err := NewClient(srv.URL).Lookup(context.Background()); err == nil {
			t.Errorf("expected error for unparsable body")
		}
	})
}
