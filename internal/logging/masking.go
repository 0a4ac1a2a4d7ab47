// Package logging provides masking helpers so tokens and buyer emails never
// land in log output in full.
package logging

import (
	"net/url"
	"strings"
)

// MaskToken redacts a download or operator token, keeping the last four
// characters so operators can correlate log lines with audit records.
func MaskToken(token string) string {
	if len(token) < 8 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}

// MaskEmail redacts the local part of an email address, keeping the first
// character and the full domain: "buyer@example.com" -> "b***@example.com".
// Strings without an @ are fully redacted.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "****"
	}
	return email[:1] + "***" + email[at:]
}

// Query parameter names whose values are masked by MaskQuery.
var sensitiveParams = map[string]func(string) string{
	"email": MaskEmail,
	"token": MaskToken,
}

// MaskQuery returns a loggable copy of a raw query string with sensitive
// parameter values masked. Unparsable queries are fully redacted.
func MaskQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "****"
	}
	for name, mask := range sensitiveParams {
		for i, v := range values[name] {
			values[name][i] = mask(v)
		}
	}
	return values.Encode()
}
