package access

import "testing"

func TestValidEmail(t *testing.T) {
	t.Parallel()

	valid := []string{
		"buyer@example.com",
		"a@x.co",
		"first.last+tag@sub.example.org",
	}
	for _, s := range valid {
		if !ValidEmail(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}

	invalid := []string{
		"",
		"not-an-email",
		"@example.com",
		"buyer@",
		"buyer@localhost",
		"two words@example.com",
		"Buyer Name <buyer@example.com>",
		"buyer@example.com, second@example.com",
	}
	for _, s := range invalid {
		if ValidEmail(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}
