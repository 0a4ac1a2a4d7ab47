package storage

import (
	"database/sql"
	"fmt"
)

// InitSchema creates all required tables and indexes.
// This is idempotent - safe to call multiple times.
func InitSchema(db *sql.DB) error {
	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	ddlStatements := []string{
		// documents table: descriptors of purchasable files
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			size_bytes INTEGER NOT NULL DEFAULT 0,
			category TEXT NOT NULL DEFAULT '',
			review_stage TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL
		)`,

		// download_tokens table: issued access tokens and their consumption state.
		// expires_at is stored as unix seconds so the conditional quota update
		// can compare it in SQL. The CHECK mirrors the quota invariant.
		`CREATE TABLE IF NOT EXISTS download_tokens (
			token TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			bound_email TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			max_downloads INTEGER NOT NULL CHECK (max_downloads > 0),
			download_count INTEGER NOT NULL DEFAULT 0
				CHECK (download_count >= 0 AND download_count <= max_downloads),
			document_id TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (document_id) REFERENCES documents(id)
		)`,

		// Index on order_id for reissuance order lookups
		`CREATE INDEX IF NOT EXISTS idx_download_tokens_order ON download_tokens(order_id)`,

		// audit_log table: append-only record of access attempts
		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			token TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			client_ip TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			request_id TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Index on token for operator audit queries
		`CREATE INDEX IF NOT EXISTS idx_audit_log_token ON audit_log(token)`,

		// reissuance_requests table: recorded requests for fresh links
		`CREATE TABLE IF NOT EXISTS reissuance_requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_id TEXT NOT NULL,
			email TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			requested_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			fulfilled_at TIMESTAMP
		)`,

		// Index on status for the operator's pending queue
		`CREATE INDEX IF NOT EXISTS idx_reissuance_requests_status ON reissuance_requests(status)`,

		// operator_tokens table: bcrypt-hashed admin API credentials
		`CREATE TABLE IF NOT EXISTS operator_tokens (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			token_hash TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// settings table: enumerated delivery-layer configuration keys
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range ddlStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}
