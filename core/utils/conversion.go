package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the only accepted textual date format.
const DateLayout = "2006-01-02"

// IsNullToken reports whether s is blank or one of the textual null markers
// ("null", "none"), compared case-insensitively after trimming.
func IsNullToken(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NULL", "NONE":
		return true
	default:
		return false
	}
}

// ParseDecimal converts a numeric field into a decimal.
// A blank value or the literal "null" yields an invalid NullDecimal and no error.
// A comma is accepted as decimal separator.
func ParseDecimal(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return decimal.NullDecimal{}, nil
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid numeric value %q: %w", s, err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

// ParseDate parses a strict YYYY-MM-DD date into UTC midnight.
// A blank value yields nil and no error.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return &t, nil
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
