package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swiftbulk/campaign-gateway/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		country model.Country
		want    string
	}{
		{"ca ten digits gets country code", "5551234567", model.CountryCA, "15551234567"},
		{"ca already eleven digits untouched", "15551234567", model.CountryCA, "15551234567"},
		{"ca strips formatting", "(555) 123-4567", model.CountryCA, "15551234567"},
		{"au leading zero replaced", "0412345678", model.CountryAU, "61412345678"},
		{"au with country code untouched", "61412345678", model.CountryAU, "61412345678"},
		{"nz leading zero replaced", "0212345678", model.CountryNZ, "64212345678"},
		{"nz formatted input", "+64 21 234 5678", model.CountryNZ, "64212345678"},
		{"empty input", "", model.CountryCA, ""},
		{"no digits at all", "abc", model.CountryCA, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw, tt.country))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		country model.Country
		want    bool
	}{
		{"ca valid eleven digits", "15551234567", model.CountryCA, true},
		{"ca wrong prefix", "25551234567", model.CountryCA, false},
		{"ca too short", "1555123456", model.CountryCA, false},
		{"au valid mobile", "61412345678", model.CountryAU, true},
		{"au valid landline variant", "612412345678", model.CountryAU, true},
		{"au too long", "6141234567890", model.CountryAU, false},
		{"au wrong prefix", "64412345678", model.CountryAU, false},
		{"nz valid", "64212345678", model.CountryNZ, true},
		{"nz minimum length", "6421234567", model.CountryNZ, true},
		{"nz too short", "642123456", model.CountryNZ, false},
		{"non digits rejected", "6421234567x", model.CountryNZ, false},
		{"empty rejected", "", model.CountryCA, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.phone, tt.country))
		})
	}
}

// The composition is what ingestion actually relies on: raw input either
// comes out dialable for the campaign's country or the row is dropped.
func TestNormalizeThenValidate(t *testing.T) {
	assert.True(t, Validate(Normalize("5551234567", model.CountryCA), model.CountryCA))
	assert.True(t, Validate(Normalize("0412345678", model.CountryAU), model.CountryAU))
	assert.True(t, Validate(Normalize("0212345678", model.CountryNZ), model.CountryNZ))

	// An AU number run through CA rules must not validate.
	assert.False(t, Validate(Normalize("0412345678", model.CountryCA), model.CountryCA))
}
