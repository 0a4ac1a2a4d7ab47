package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvend/download-gate/internal/storage"
)

const testOperatorToken = "test-operator-token-0123456789abcdef"

// newTestServer builds the operator API on real in-memory storage with one
// bootstrapped operator token.
func newTestServer(t *testing.T) (*httptest.Server, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, Bootstrap(context.Background(), store, testOperatorToken))

	h := NewHandler(store, new(slog.LevelVar), slog.Default(), "https://downloads.example.com")
	srv := httptest.NewServer(h.NewRouter(slog.Default()))
	t.Cleanup(srv.Close)
	return srv, store
}

// doJSON issues an authenticated request and decodes the JSON response.
func doJSON(t *testing.T, srv *httptest.Server, method, path string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testOperatorToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func seedDocument(t *testing.T, store *storage.SQLiteStorage, id string) {
	t.Helper()
	require.NoError(t, store.CreateDocument(context.Background(), &storage.Document{
		ID:          id,
		Name:        "report.pdf",
		SizeBytes:   2048,
		Category:    "research",
		ReviewStage: "approved",
		URL:         "https://files.example.com/" + id,
	}))
}

func TestAuthMiddleware(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/api/tokens")
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong token", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/tokens", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer wrong-token")
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		var body map[string]any
		resp := doJSON(t, srv, http.MethodGet, "/api/tokens", nil, &body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("health is public", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close() //nolint:errcheck
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestBootstrapIdempotent(t *testing.T) {
	store, err := storage.New(":memory:")
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	ctx := context.Background()

	require.NoError(t, Bootstrap(ctx, store, ""))
	count, err := store.CountOperatorTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "empty bootstrap token should create nothing")

	require.NoError(t, Bootstrap(ctx, store, "first-token"))
	require.NoError(t, Bootstrap(ctx, store, "second-token"))
	count, err = store.CountOperatorTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "bootstrap should only run on an empty token table")
}

func TestMintTokenLifecycle(t *testing.T) {
	srv, store := newTestServer(t)
	seedDocument(t, store, "doc-1")

	var minted struct {
		Token        string `json:"token"`
		OrderID      string `json:"order_id"`
		ExpiresAt    string `json:"expires_at"`
		MaxDownloads int    `json:"max_downloads"`
		DownloadURL  string `json:"download_url"`
	}
	resp := doJSON(t, srv, http.MethodPost, "/api/tokens", map[string]any{
		"order_id":    "order-100",
		"email":       "Buyer@Example.com",
		"document_id": "doc-1",
	}, &minted)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.Len(t, minted.Token, 64, "expected a 32-byte hex token")
	assert.Equal(t, "order-100", minted.OrderID)
	assert.Equal(t, 3, minted.MaxDownloads, "default quota comes from settings")
	assert.Equal(t,
		fmt.Sprintf("https://downloads.example.com/api/downloads/%s/verify", minted.Token),
		minted.DownloadURL)

	// Stored email is lowercased
	stored, err := store.GetDownloadToken(context.Background(), minted.Token)
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", stored.BoundEmail)

	expires, err := time.Parse(time.RFC3339, minted.ExpiresAt)
	require.NoError(t, err)
	assert.InDelta(t, 72.0, time.Until(expires).Hours(), 0.1,
		"default TTL comes from settings")

	// Fetch shows the masked token
	var fetched struct {
		Token         string `json:"token"`
		DownloadCount int    `json:"download_count"`
	}
	resp = doJSON(t, srv, http.MethodGet, "/api/tokens/"+minted.Token, nil, &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEqual(t, minted.Token, fetched.Token)
	assert.Contains(t, fetched.Token, minted.Token[len(minted.Token)-4:])

	// Revoke exhausts the quota
	resp = doJSON(t, srv, http.MethodDelete, "/api/tokens/"+minted.Token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err = store.GetDownloadToken(context.Background(), minted.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.MaxDownloads, stored.DownloadCount)
}

func TestMintTokenValidation(t *testing.T) {
	srv, store := newTestServer(t)
	seedDocument(t, store, "doc-1")

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing order", map[string]any{"email": "a@example.com", "document_id": "doc-1"}},
		{"missing document", map[string]any{"order_id": "o-1", "email": "a@example.com"}},
		{"bad email", map[string]any{"order_id": "o-1", "email": "not-an-email", "document_id": "doc-1"}},
		{"unknown document", map[string]any{"order_id": "o-1", "email": "a@example.com", "document_id": "doc-404"}},
		{"negative quota", map[string]any{"order_id": "o-1", "email": "a@example.com", "document_id": "doc-1", "max_downloads": -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, srv, http.MethodPost, "/api/tokens", tc.body, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestTokenNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, srv, http.MethodGet, "/api/tokens/no-such-token", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodDelete, "/api/tokens/no-such-token", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDocumentEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	doc := map[string]any{
		"id":                "doc-api",
		"name":              "whitepaper.pdf",
		"size_bytes":        4096,
		"document_category": "research",
		"review_stage":      "approved",
		"url":               "https://files.example.com/doc-api",
	}
	resp := doJSON(t, srv, http.MethodPost, "/api/documents", doc, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPost, "/api/documents", doc, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var fetched struct {
		Name      string `json:"name"`
		SizeBytes int64  `json:"size_bytes"`
	}
	resp = doJSON(t, srv, http.MethodGet, "/api/documents/doc-api", nil, &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "whitepaper.pdf", fetched.Name)
	assert.Equal(t, int64(4096), fetched.SizeBytes)

	resp = doJSON(t, srv, http.MethodGet, "/api/documents/doc-404", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSettingsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var settings struct {
		DefaultMaxDownloads int    `json:"default_max_downloads"`
		DefaultLinkTTLHours int    `json:"default_link_ttl_hours"`
		SupportEmail        string `json:"support_email"`
		DownloadsEnabled    bool   `json:"downloads_enabled"`
	}
	resp := doJSON(t, srv, http.MethodGet, "/api/settings", nil, &settings)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, settings.DefaultMaxDownloads)
	assert.Equal(t, 72, settings.DefaultLinkTTLHours)
	assert.True(t, settings.DownloadsEnabled)

	resp = doJSON(t, srv, http.MethodPut, "/api/settings", map[string]string{
		"default_max_downloads": "5",
		"support_email":         "help@example.com",
		"downloads_enabled":     "false",
	}, &settings)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, settings.DefaultMaxDownloads)
	assert.Equal(t, "help@example.com", settings.SupportEmail)
	assert.False(t, settings.DownloadsEnabled)

	var apiErr struct {
		Error string `json:"error"`
	}
	resp = doJSON(t, srv, http.MethodPut, "/api/settings", map[string]string{
		"nonsense_key": "1",
	}, &apiErr)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, ErrCodeUnknownSetting, apiErr.Error)
}

func TestReissuanceQueue(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, store.CreateReissuanceRequest(ctx, "order-55", "buyer@example.com"))

	var listing struct {
		Requests []struct {
			ID      int64  `json:"id"`
			OrderID string `json:"order_id"`
			Email   string `json:"email"`
			Status  string `json:"status"`
		} `json:"requests"`
	}
	resp := doJSON(t, srv, http.MethodGet, "/api/reissuance?status=pending", nil, &listing)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, listing.Requests, 1)
	assert.Equal(t, "order-55", listing.Requests[0].OrderID)
	assert.NotEqual(t, "buyer@example.com", listing.Requests[0].Email, "email should be masked")

	path := fmt.Sprintf("/api/reissuance/%d/fulfill", listing.Requests[0].ID)
	resp = doJSON(t, srv, http.MethodPost, path, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodGet, "/api/reissuance?status=pending", nil, &listing)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, listing.Requests)

	// Fulfilling twice fails; the request is no longer pending
	resp = doJSON(t, srv, http.MethodPost, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodGet, "/api/reissuance?status=bogus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuditListing(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendAudit(ctx, &storage.AuditRecord{
			Token:   fmt.Sprintf("tok-audit-%d", i),
			Email:   "buyer@example.com",
			Outcome: "valid",
		}))
	}

	var listing struct {
		Records []struct {
			Token   string `json:"token"`
			Email   string `json:"email"`
			Outcome string `json:"outcome"`
		} `json:"records"`
	}
	resp := doJSON(t, srv, http.MethodGet, "/api/audit", nil, &listing)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, listing.Records, 3)
	assert.NotEqual(t, "buyer@example.com", listing.Records[0].Email)

	resp = doJSON(t, srv, http.MethodGet, "/api/audit?limit=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOperatorTokenEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var created struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Token string `json:"token"`
	}
	resp := doJSON(t, srv, http.MethodPost, "/api/operators", map[string]string{"name": "ci"}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "ci", created.Name)
	assert.Len(t, created.Token, 64)

	// The fresh token authenticates
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/operators", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+created.Token)
	authResp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer authResp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, authResp.StatusCode)

	var listing struct {
		Operators []struct {
			Name string `json:"name"`
		} `json:"operators"`
	}
	resp = doJSON(t, srv, http.MethodGet, "/api/operators", nil, &listing)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, listing.Operators, 2, "bootstrap plus the minted one")

	resp = doJSON(t, srv, http.MethodPost, "/api/operators", map[string]string{"name": "  "}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/operators/%d", created.ID), nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The bootstrap credential is now the last one and cannot be deleted
	resp = doJSON(t, srv, http.MethodGet, "/api/operators", nil, &listing)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, listing.Operators, 1)

	resp = doJSON(t, srv, http.MethodDelete, "/api/operators/1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogLevelEndpoints(t *testing.T) {
	store, err := storage.New(":memory:")
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	require.NoError(t, Bootstrap(context.Background(), store, testOperatorToken))

	level := new(slog.LevelVar)
	h := NewHandler(store, level, slog.Default(), "")
	srv := httptest.NewServer(h.NewRouter(slog.Default()))
	defer srv.Close()

	var body map[string]string
	resp := doJSON(t, srv, http.MethodPut, "/api/loglevel", map[string]string{"level": "debug"}, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "debug", body["level"])
	assert.Equal(t, slog.LevelDebug, level.Level())

	resp = doJSON(t, srv, http.MethodGet, "/api/loglevel", nil, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "debug", body["level"])

	resp = doJSON(t, srv, http.MethodPut, "/api/loglevel", map[string]string{"level": "verbose"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, slog.LevelDebug, level.Level())
}
