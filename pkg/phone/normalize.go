package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Normalize converts a raw party number to E.164 for directory search.
// Numbers that cannot be parsed for the region (short extensions, internal
// numbers) are returned trimmed but otherwise as-is, since the CRM's own
// search is tolerant of partial numbers.
func Normalize(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return raw
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return raw
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

// Digits strips everything but digits, used for loose number comparison.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
