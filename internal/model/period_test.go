package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestMonthPeriod(t *testing.T) {
	jan := MonthPeriod(2026, 1)
	assert.True(t, jan.Contains(day(2026, 1, 1)))
	assert.True(t, jan.Contains(day(2026, 1, 31)))
	assert.False(t, jan.Contains(day(2026, 2, 1)))
	assert.False(t, jan.Contains(day(2025, 12, 31)))

	dec := MonthPeriod(2026, 12)
	assert.True(t, dec.Contains(day(2026, 12, 1)))
	assert.True(t, dec.Contains(day(2026, 12, 31)))
	assert.False(t, dec.Contains(day(2027, 1, 1)))
}

func TestMonthEnd(t *testing.T) {
	tests := []struct {
		year, month int
		want        time.Time
	}{
		{2026, 1, day(2026, 1, 31)},
		{2026, 2, day(2026, 2, 28)},
		{2024, 2, day(2024, 2, 29)},
		{2000, 2, day(2000, 2, 29)},
		{1900, 2, day(1900, 2, 28)},
		{2026, 4, day(2026, 4, 30)},
		{2026, 12, day(2026, 12, 31)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MonthEnd(tt.year, tt.month), "%d-%02d", tt.year, tt.month)
	}
}

func TestThrough(t *testing.T) {
	p := Through(day(2026, 3, 31))
	assert.True(t, p.Contains(day(2019, 6, 1)))
	assert.True(t, p.Contains(day(2026, 3, 31)))
	assert.False(t, p.Contains(day(2026, 4, 1)))

	ytd := YearThrough(2026, time.Date(2026, 3, 31, 18, 0, 0, 0, time.UTC))
	assert.False(t, ytd.Contains(day(2025, 12, 31)))
	assert.True(t, ytd.Contains(day(2026, 1, 1)))
	assert.True(t, ytd.Contains(day(2026, 3, 31)))
}

func TestInYearMonth(t *testing.T) {
	d := day(2026, 5, 17)
	assert.True(t, InYearMonth(d, 0, 0))
	assert.True(t, InYearMonth(d, 2026, 0))
	assert.True(t, InYearMonth(d, 2026, 5))
	assert.False(t, InYearMonth(d, 2026, 6))
	assert.False(t, InYearMonth(d, 2025, 0))
}
