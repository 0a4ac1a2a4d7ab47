package storage

import (
	"context"
	"fmt"
)

// AppendAudit inserts one access-attempt record into the append-only log.
// The log is never read back on the verification path; failures here must not
// gate the primary decision (the access engine only reports them).
func (s *SQLiteStorage) AppendAudit(ctx context.Context, rec *AuditRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (token, email, client_ip, user_agent, request_id, outcome)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Token, rec.Email, rec.ClientIP, rec.UserAgent, rec.RequestID, rec.Outcome)
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// ListAudit returns audit records for the operator API, newest first.
// An empty token returns records across all tokens. A limit of 0 or less
// defaults to 100.
func (s *SQLiteStorage) ListAudit(ctx context.Context, token string, limit int) ([]*AuditRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, token, email, client_ip, user_agent, request_id, outcome, created_at
		 FROM audit_log`
	args := []any{}
	if token != "" {
		query += " WHERE token = ?"
		args = append(args, token)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var records []*AuditRecord
	for rows.Next() {
		var r AuditRecord
		err := rows.Scan(&r.ID, &r.Token, &r.Email, &r.ClientIP, &r.UserAgent, &r.RequestID, &r.Outcome, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		records = append(records, &r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit records: %w", err)
	}

	if records == nil {
		records = make([]*AuditRecord, 0)
	}

	return records, nil
}
