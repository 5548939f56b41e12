package model

import (
	"fmt"
	"strings"
)

// Country is the closed set of destinations the gateway can dispatch to.
// Phone normalization and account-key resolution are both keyed on it, so
// adding a country means adding explicit rules, never falling through to
// the CA defaults.
type Country string

const (
	CountryCA Country = "CA"
	CountryAU Country = "AU"
	CountryNZ Country = "NZ"
)

func (c Country) String() string { return string(c) }

func (c Country) Valid() bool {
	return c == CountryCA || c == CountryAU || c == CountryNZ
}

// ParseCountry normalizes input; empty => CA.
// Returns an error for anything outside the supported set.
func ParseCountry(s string) (Country, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "CA":
		return CountryCA, nil
	case "AU":
		return CountryAU, nil
	case "NZ":
		return CountryNZ, nil
	default:
		return "", fmt.Errorf("unsupported country %q", s)
	}
}
