package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNullToken(t *testing.T) {
	for _, s := range []string{"", "   ", "NULL", "null", "None", " none "} {
		assert.True(t, IsNullToken(s), "expected %q to be a null token", s)
	}
	for _, s := range []string{"LIMA", "0", "nil", "NULLO"} {
		assert.False(t, IsNullToken(s), "expected %q not to be a null token", s)
	}
}

func TestParseDecimal(t *testing.T) {
	t.Run("CommaSeparator", func(t *testing.T) {
		got, err := ParseDecimal("12,5")
		require.NoError(t, err)
		assert.True(t, got.Valid)
		assert.True(t, got.Decimal.Equal(decimal.RequireFromString("12.5")))
	})

	t.Run("PeriodSeparator", func(t *testing.T) {
		got, err := ParseDecimal(" 7.25 ")
		require.NoError(t, err)
		assert.True(t, got.Decimal.Equal(decimal.RequireFromString("7.25")))
	})

	t.Run("Absent", func(t *testing.T) {
		for _, s := range []string{"", "null", "NULL"} {
			got, err := ParseDecimal(s)
			assert.NoError(t, err)
			assert.False(t, got.Valid)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		got, err := ParseDecimal("abc")
		assert.Error(t, err)
		assert.False(t, got.Valid)
	})
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *got)

	got, err = ParseDate("")
	assert.NoError(t, err)
	assert.Nil(t, got)

	for _, s := range []string{"15/03/2024", "2024-3-15", "2024-03-15 10:00:00"} {
		got, err = ParseDate(s)
		assert.Error(t, err, s)
		assert.Nil(t, got)
	}
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2024, 3, 15, 23, 59, 1, 5, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), DateOnly(in))
}
