package access

import (
	"net/mail"
	"strings"
)

// ValidEmail reports whether s is a plausible single email address.
// Pure syntax check, no I/O. Display names and address lists are rejected:
// the address must stand alone exactly as supplied.
func ValidEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	if addr.Address != s {
		return false
	}
	// mail.ParseAddress accepts local-only addresses in some forms; require
	// a dot in the domain like every address this system ever issues to.
	at := strings.LastIndex(s, "@")
	if at < 1 || !strings.Contains(s[at+1:], ".") {
		return false
	}
	return true
}
