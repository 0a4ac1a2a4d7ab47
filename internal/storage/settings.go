package storage

import (
	"context"
	"fmt"
	"strconv"
)

// Recognized settings keys. SetSetting rejects everything else so the
// settings table never becomes an ambient grab-bag.
const (
	SettingDefaultMaxDownloads = "default_max_downloads"
	SettingDefaultLinkTTLHours = "default_link_ttl_hours"
	SettingSupportEmail        = "support_email"
	SettingDownloadsEnabled    = "downloads_enabled"
)

// Defaults applied when a key has never been written.
const (
	defaultMaxDownloads = 3
	defaultLinkTTLHours = 72
)

var recognizedSettings = map[string]bool{
	SettingDefaultMaxDownloads: true,
	SettingDefaultLinkTTLHours: true,
	SettingSupportEmail:        true,
	SettingDownloadsEnabled:    true,
}

// RecognizedSetting reports whether key belongs to the enumerated set.
func RecognizedSetting(key string) bool {
	return recognizedSettings[key]
}

// GetSettings reads all recognized keys into a typed Settings struct,
// applying defaults for keys that were never written or fail to parse.
func (s *SQLiteStorage) GetSettings(ctx context.Context) (*Settings, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan settings row: %w", err)
		}
		values[k] = v
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}

	settings := &Settings{
		DefaultMaxDownloads: defaultMaxDownloads,
		DefaultLinkTTLHours: defaultLinkTTLHours,
		DownloadsEnabled:    true,
	}

	if v, ok := values[SettingDefaultMaxDownloads]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			settings.DefaultMaxDownloads = n
		}
	}
	if v, ok := values[SettingDefaultLinkTTLHours]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			settings.DefaultLinkTTLHours = n
		}
	}
	if v, ok := values[SettingSupportEmail]; ok {
		settings.SupportEmail = v
	}
	if v, ok := values[SettingDownloadsEnabled]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.DownloadsEnabled = b
		}
	}

	return settings, nil
}

// SetSetting writes one recognized key. Returns ErrUnknownSetting for keys
// outside the enumerated set.
func (s *SQLiteStorage) SetSetting(ctx context.Context, key, value string) error {
	if !recognizedSettings[key] {
		return ErrUnknownSetting
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}

	return nil
}
