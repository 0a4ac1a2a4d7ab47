package storage

import (
	"context"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// CreateOperatorToken stores an admin API credential. Only the bcrypt hash is
// persisted; the caller keeps the plaintext for one-time display.
// Returns ErrDuplicate if a token with this hash already exists.
func (s *SQLiteStorage) CreateOperatorToken(ctx context.Context, name, tokenHash string) (*OperatorToken, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO operator_tokens (token_hash, name) VALUES (?, ?)",
		tokenHash, name)

	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) {
			if sqliteErr.Code() == 2067 || (sqliteErr.Code()&0xFF) == sqlite3.SQLITE_CONSTRAINT {
				return nil, ErrDuplicate
			}
		}
		return nil, fmt.Errorf("failed to create operator token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	return &OperatorToken{
		ID:        id,
		TokenHash: tokenHash,
		Name:      name,
	}, nil
}

// ListOperatorTokens returns all operator tokens, newest first.
// Returns empty slice if no tokens exist.
func (s *SQLiteStorage) ListOperatorTokens(ctx context.Context) ([]*OperatorToken, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, token_hash, name, created_at FROM operator_tokens ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query operator tokens: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var tokens []*OperatorToken
	for rows.Next() {
		var t OperatorToken
		err := rows.Scan(&t.ID, &t.TokenHash, &t.Name, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operator token row: %w", err)
		}
		tokens = append(tokens, &t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operator tokens: %w", err)
	}

	if tokens == nil {
		tokens = make([]*OperatorToken, 0)
	}

	return tokens, nil
}

// DeleteOperatorToken deletes an operator token by ID.
// Returns ErrNotFound if the token doesn't exist.
func (s *SQLiteStorage) DeleteOperatorToken(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM operator_tokens WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete operator token: %w", err)
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

// CountOperatorTokens returns the number of operator tokens.
// Used at startup to decide whether to bootstrap an initial credential.
func (s *SQLiteStorage) CountOperatorTokens(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM operator_tokens").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count operator tokens: %w", err)
	}
	return count, nil
}
