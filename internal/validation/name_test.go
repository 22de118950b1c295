package validation

import (
	"strings"
	"testing"
)

func TestValidAppName_Valid(t *testing.T) {
	valids := []string{"a", "crm", "billing-v2", "data.warehouse", "a_b-c.d9", strings.Repeat("a", 64)}
	for _, v := range valids {
		if !ValidAppName(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
}

func TestValidAppName_Invalid(t *testing.T) {
	invalids := []string{
		"",
		"CRM",
		"my app",
		"-crm",
		"crm.",
		"crm:read",
		"semi;colon",
		strings.Repeat("a", 65),
	}
	for _, v := range invalids {
		if ValidAppName(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}
