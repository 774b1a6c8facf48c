package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	instant := time.Date(2024, 3, 31, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-31", DayOf(instant, time.UTC))
	assert.Equal(t, "2024-04-01", DayOf(instant, loc))
}

func TestParseDay(t *testing.T) {
	got, err := ParseDay("2024-03-05", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDay("05/03/2024", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestMonthOf(t *testing.T) {
	m := MonthOf(time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, Month{Start: "2024-02-01", End: "2024-03-01"}, m)
	assert.Equal(t, "2024-02", m.Label())

	dec := MonthOf(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, Month{Start: "2023-12-01", End: "2024-01-01"}, dec)
}

func TestMonthContainsIsHalfOpen(t *testing.T) {
	m := Month{Start: "2024-02-01", End: "2024-03-01"}

	assert.True(t, m.Contains("2024-02-01"))
	assert.True(t, m.Contains("2024-02-29"))
	assert.False(t, m.Contains("2024-03-01"))
	assert.False(t, m.Contains("2024-01-31"))
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-11", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, Month{Start: "2024-11-01", End: "2024-12-01"}, m)

	_, err = ParseMonth("2024-13", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestValidateDay(t *testing.T) {
	assert.NoError(t, ValidateDay("2024-02-29"))
	assert.ErrorIs(t, ValidateDay("2023-02-29"), ErrInvalidDay)
	assert.ErrorIs(t, ValidateDay(""), ErrInvalidDay)
}
