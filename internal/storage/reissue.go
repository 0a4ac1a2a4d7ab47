package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateReissuanceRequest records a pending request for fresh download links.
// Returns ErrDuplicate if a pending request for the same (order, email) pair
// already exists, so repeated clicks don't pile up queue entries.
func (s *SQLiteStorage) CreateReissuanceRequest(ctx context.Context, orderID, email string) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reissuance_requests
		 WHERE order_id = ? AND email = ? AND status = ?)`,
		orderID, email, ReissuanceStatusPending).
		Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check pending reissuance requests: %w", err)
	}
	if exists == 1 {
		return ErrDuplicate
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO reissuance_requests (order_id, email, status) VALUES (?, ?, ?)",
		orderID, email, ReissuanceStatusPending)
	if err != nil {
		return fmt.Errorf("failed to create reissuance request: %w", err)
	}

	return nil
}

// ListReissuanceRequests returns reissuance requests for the operator API,
// newest first. An empty status returns all requests.
func (s *SQLiteStorage) ListReissuanceRequests(ctx context.Context, status string) ([]*ReissuanceRequest, error) {
	query := "SELECT id, order_id, email, status, requested_at, fulfilled_at FROM reissuance_requests"
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reissuance requests: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var requests []*ReissuanceRequest
	for rows.Next() {
		var r ReissuanceRequest
		var fulfilled sql.NullTime
		err := rows.Scan(&r.ID, &r.OrderID, &r.Email, &r.Status, &r.RequestedAt, &fulfilled)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reissuance row: %w", err)
		}
		if fulfilled.Valid {
			t := fulfilled.Time
			r.FulfilledAt = &t
		}
		requests = append(requests, &r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reissuance requests: %w", err)
	}

	if requests == nil {
		requests = make([]*ReissuanceRequest, 0)
	}

	return requests, nil
}

// FulfillReissuanceRequest marks a pending request as fulfilled after the
// operator has issued and delivered new links out of band.
// Returns ErrNotFound if no pending request has this ID.
func (s *SQLiteStorage) FulfillReissuanceRequest(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE reissuance_requests
		 SET status = ?, fulfilled_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		ReissuanceStatusFulfilled, id, ReissuanceStatusPending)
	if err != nil {
		return fmt.Errorf("failed to fulfill reissuance request: %w", err)
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
