package logging

import (
	"strings"
	"testing"
)

func TestMaskToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"long token keeps last four", "3f9a1c77e2b04d5f8a6b", "****8a6b"},
		{"short token fully masked", "abc", "****"},
		{"empty token fully masked", "", "****"},
		{"boundary length fully masked", "1234567", "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskToken(tt.token); got != tt.want {
				t.Errorf("MaskToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestMaskEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"normal address", "buyer@example.com", "b***@example.com"},
		{"single char local part", "a@x.com", "a***@x.com"},
		{"no at sign", "not-an-email", "****"},
		{"leading at sign", "@example.com", "****"},
		{"empty", "", "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskEmail(tt.email); got != tt.want {
				t.Errorf("MaskEmail(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

func TestMaskQuery(t *testing.T) {
	t.Parallel()

	got := MaskQuery("email=buyer%40example.com&page=2")
	if strings.Contains(got, "buyer@example.com") || strings.Contains(got, "buyer%40example.com") {
		t.Errorf("expected email to be masked, got %q", got)
	}
	if !strings.Contains(got, "page=2") {
		t.Errorf("expected non-sensitive params preserved, got %q", got)
	}

	if got := MaskQuery(""); got != "" {
		t.Errorf("expected empty query to stay empty, got %q", got)
	}

	got = MaskQuery("token=3f9a1c77e2b04d5f8a6b")
	if strings.Contains(got, "3f9a1c77e2b04d5f") {
		t.Errorf("expected token to be masked, got %q", got)
	}
	if !strings.Contains(got, "8a6b") {
		t.Errorf("expected token tail preserved for correlation, got %q", got)
	}
}
