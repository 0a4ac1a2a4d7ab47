package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// CreateDownloadToken inserts a new download token.
// Returns ErrDuplicate if the token string already exists.
// The download count always starts at zero regardless of the input value.
func (s *SQLiteStorage) CreateDownloadToken(ctx context.Context, tok *DownloadToken) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO download_tokens (token, order_id, bound_email, expires_at, max_downloads, download_count, document_id)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		tok.Token, tok.OrderID, tok.BoundEmail, tok.ExpiresAt.Unix(), tok.MaxDownloads, tok.DocumentID)

	if err != nil {
		// UNIQUE constraint violations surface as extended code 2067
		// or base constraint code 19
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) {
			if sqliteErr.Code() == 2067 || (sqliteErr.Code()&0xFF) == sqlite3.SQLITE_CONSTRAINT {
				return ErrDuplicate
			}
		}
		return fmt.Errorf("failed to create download token: %w", err)
	}

	return nil
}

// GetDownloadToken retrieves a token record by its opaque token string.
// Returns ErrNotFound if the token doesn't exist.
func (s *SQLiteStorage) GetDownloadToken(ctx context.Context, token string) (*DownloadToken, error) {
	var t DownloadToken
	var expiresUnix int64

	err := s.db.QueryRowContext(ctx,
		`SELECT token, order_id, bound_email, expires_at, max_downloads, download_count, document_id, created_at
		 FROM download_tokens WHERE token = ?`, token).
		Scan(&t.Token, &t.OrderID, &t.BoundEmail, &expiresUnix, &t.MaxDownloads, &t.DownloadCount, &t.DocumentID, &t.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get download token: %w", err)
	}

	t.ExpiresAt = time.Unix(expiresUnix, 0).UTC()
	return &t, nil
}

// ListDownloadTokens returns all download tokens, newest first (for the admin API).
func (s *SQLiteStorage) ListDownloadTokens(ctx context.Context) ([]*DownloadToken, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT token, order_id, bound_email, expires_at, max_downloads, download_count, document_id, created_at
		 FROM download_tokens ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query download tokens: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var tokens []*DownloadToken
	for rows.Next() {
		var t DownloadToken
		var expiresUnix int64
		err := rows.Scan(&t.Token, &t.OrderID, &t.BoundEmail, &expiresUnix, &t.MaxDownloads, &t.DownloadCount, &t.DocumentID, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan download token row: %w", err)
		}
		t.ExpiresAt = time.Unix(expiresUnix, 0).UTC()
		tokens = append(tokens, &t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating download tokens: %w", err)
	}

	if tokens == nil {
		tokens = make([]*DownloadToken, 0)
	}

	return tokens, nil
}

// RevokeDownloadToken permanently exhausts a token by consuming its remaining
// quota in one step. The row is never deleted; the record stays inert for the
// audit trail.
// Returns ErrNotFound if the token doesn't exist.
func (s *SQLiteStorage) RevokeDownloadToken(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE download_tokens
		 SET download_count = max_downloads
		 WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("failed to revoke download token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ConsumeDownload atomically increments the download count of a token,
// provided the token exists, has not expired, and has quota remaining.
// This single conditional UPDATE is the only mutation path for the count and
// the sole enforcement point of the quota invariant under concurrency.
//
// On success it returns the new download count. On failure it returns
// ErrNotFound, ErrExpired or ErrQuotaExhausted depending on why the
// conditional update matched no row.
func (s *SQLiteStorage) ConsumeDownload(ctx context.Context, token string, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE download_tokens
		 SET download_count = download_count + 1
		 WHERE token = ? AND download_count < max_downloads AND expires_at > ?`,
		token, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to consume download: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 1 {
		var count int
		err := s.db.QueryRowContext(ctx,
			"SELECT download_count FROM download_tokens WHERE token = ?", token).
			Scan(&count)
		if err != nil {
			return 0, fmt.Errorf("failed to read download count: %w", err)
		}
		return count, nil
	}

	// The conditional update matched nothing. Classify why with a follow-up
	// read on the same (single) connection.
	var expiresUnix int64
	var count, max int
	err = s.db.QueryRowContext(ctx,
		"SELECT expires_at, download_count, max_downloads FROM download_tokens WHERE token = ?", token).
		Scan(&expiresUnix, &count, &max)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to classify consume failure: %w", err)
	}

	if expiresUnix <= now.Unix() {
		return 0, ErrExpired
	}
	return 0, ErrQuotaExhausted
}

// OrderExists reports whether any download token was ever issued for the order.
// Used by the reissuance path to reject requests for unknown orders.
func (s *SQLiteStorage) OrderExists(ctx context.Context, orderID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM download_tokens WHERE order_id = ?)", orderID).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check order existence: %w", err)
	}
	return exists == 1, nil
}
