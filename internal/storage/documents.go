package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// CreateDocument inserts a document descriptor.
// Returns ErrDuplicate if a document with this ID already exists.
func (s *SQLiteStorage) CreateDocument(ctx context.Context, doc *Document) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, name, size_bytes, category, review_stage, url)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Name, doc.SizeBytes, doc.Category, doc.ReviewStage, doc.URL)

	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) {
			if sqliteErr.Code() == 2067 || (sqliteErr.Code()&0xFF) == sqlite3.SQLITE_CONSTRAINT {
				return ErrDuplicate
			}
		}
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// GetDocument retrieves a document descriptor by ID.
// Returns ErrNotFound if the document doesn't exist.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*Document, error) {
	var d Document

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, size_bytes, category, review_stage, url FROM documents WHERE id = ?", id).
		Scan(&d.ID, &d.Name, &d.SizeBytes, &d.Category, &d.ReviewStage, &d.URL)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &d, nil
}
