package storage

import (
	"context"
	"errors"
	"testing"
)

func TestGetSettingsDefaults(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)

	settings, err := s.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}

	if settings.DefaultMaxDownloads != 3 {
		t.Errorf("expected default max downloads 3, got %d", settings.DefaultMaxDownloads)
	}
	if settings.DefaultLinkTTLHours != 72 {
		t.Errorf("expected default TTL 72h, got %d", settings.DefaultLinkTTLHours)
	}
	if !settings.DownloadsEnabled {
		t.Errorf("expected downloads enabled by default")
	}
	if settings.SupportEmail != "" {
		t.Errorf("expected empty support email, got %q", settings.SupportEmail)
	}
}

func TestSetSetting(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.SetSetting(ctx, SettingDefaultMaxDownloads, "5"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := s.SetSetting(ctx, SettingSupportEmail, "support@example.com"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := s.SetSetting(ctx, SettingDownloadsEnabled, "false"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.DefaultMaxDownloads != 5 {
		t.Errorf("expected max downloads 5, got %d", settings.DefaultMaxDownloads)
	}
	if settings.SupportEmail != "support@example.com" {
		t.Errorf("expected support email to round-trip, got %q", settings.SupportEmail)
	}
	if settings.DownloadsEnabled {
		t.Errorf("expected downloads disabled")
	}

	// Overwrite takes effect
	if err := s.SetSetting(ctx, SettingDefaultMaxDownloads, "7"); err != nil {
		t.Fatalf("SetSetting overwrite failed: %v", err)
	}
	settings, err = s.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.DefaultMaxDownloads != 7 {
		t.Errorf("expected max downloads 7 after overwrite, got %d", settings.DefaultMaxDownloads)
	}
}

func TestSetSettingUnknownKey(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)

	err := s.SetSetting(context.Background(), "theme_color", "blue")
	if !errors.Is(err, ErrUnknownSetting) {
		t.Errorf("expected ErrUnknownSetting, got %v", err)
	}
}

func TestGetSettingsIgnoresGarbageValues(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.SetSetting(ctx, SettingDefaultMaxDownloads, "not-a-number"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := s.SetSetting(ctx, SettingDefaultLinkTTLHours, "-4"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.DefaultMaxDownloads != 3 {
		t.Errorf("expected unparsable value to fall back to default, got %d", settings.DefaultMaxDownloads)
	}
	if settings.DefaultLinkTTLHours != 72 {
		t.Errorf("expected non-positive TTL to fall back to default, got %d", settings.DefaultLinkTTLHours)
	}
}
