// Package phone normalizes raw phone input into the digit-only dialable
// form the provider expects, with one explicit rule set per country.
package phone

import (
	"strings"

	"github.com/swiftbulk/campaign-gateway/internal/model"
)

const maxLen = 15

// Normalize strips everything but digits and applies the country's
// leading-zero / country-code substitution.
func Normalize(raw string, country model.Country) string {
	digits := stripNonDigits(raw)
	if digits == "" {
		return ""
	}

	switch country {
	case model.CountryAU:
		if strings.HasPrefix(digits, "0") {
			digits = "61" + digits[1:]
		}
	case model.CountryNZ:
		if strings.HasPrefix(digits, "0") {
			digits = "64" + digits[1:]
		}
	default: // CA/US rules
		if len(digits) == 10 {
			digits = "1" + digits
		}
	}

	return digits
}

// Validate checks a normalized number against the country's prefix and
// length bounds. Pure function; callers count a false as an invalid row
// and drop it rather than erroring out.
func Validate(normalized string, country model.Country) bool {
	if normalized == "" || !allDigits(normalized) {
		return false
	}

	n := len(normalized)
	switch country {
	case model.CountryAU:
		// Country code plus either the mobile format (614XXXXXXXX) or the
		// longer landline variants.
		return strings.HasPrefix(normalized, "61") && (n == 11 || n == 12)
	case model.CountryNZ:
		return strings.HasPrefix(normalized, "64") && n >= 10 && n <= maxLen
	default:
		return strings.HasPrefix(normalized, "1") && n >= 11 && n <= maxLen
	}
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
