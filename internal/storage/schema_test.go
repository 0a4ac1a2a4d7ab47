package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// TestInitSchemaIdempotent verifies that InitSchema is safe to call twice.
func TestInitSchemaIdempotent(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := InitSchema(db); err != nil {
		t.Fatalf("first InitSchema failed: %v", err)
	}
	if err := InitSchema(db); err != nil {
		t.Fatalf("second InitSchema failed: %v", err)
	}
}

// TestSchemaQuotaCheck verifies the CHECK constraint backing the quota
// invariant: download_count can never exceed max_downloads.
func TestSchemaQuotaCheck(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()

	seedToken(t, s, "tok-check", 1, time.Now().Add(time.Hour))

	// A direct unconditional increment past the quota must be rejected by
	// the schema even though no code path issues one.
	_, err := s.db.ExecContext(ctx,
		"UPDATE download_tokens SET download_count = max_downloads + 1 WHERE token = ?",
		"tok-check")
	if err == nil {
		t.Fatalf("expected CHECK constraint violation, got nil")
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
