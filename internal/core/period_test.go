package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Wednesday.
var refNow = time.Date(2026, time.January, 14, 15, 30, 0, 0, time.UTC)

func TestPeriodRange(t *testing.T) {
	tests := []struct {
		period   Period
		from, to time.Time
	}{
		{Today, time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)},
		{ThisWeek, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC)},
		{ThisMonth, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{LastMonth, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ThisYear, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			r := tt.period.Range(refNow)
			assert.Equal(t, tt.from, r.From)
			assert.Equal(t, tt.to.Add(-time.Nanosecond), r.To)
			assert.True(t, r.Contains(tt.from))
			assert.True(t, r.Contains(r.To))
			assert.False(t, r.Contains(tt.to))
		})
	}
}

func TestLastMonthExcludesNow(t *testing.T) {
	assert.False(t, LastMonth.Range(refNow).Contains(refNow))
	for _, p := range []Period{Today, ThisWeek, ThisMonth, ThisYear} {
		assert.True(t, p.Range(refNow).Contains(refNow), string(p))
	}
}

func TestWeekStartsOnMonday(t *testing.T) {
	sunday := time.Date(2026, time.January, 18, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), ThisWeek.Range(sunday).From)

	monday := time.Date(2026, time.January, 12, 0, 0, 1, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), ThisWeek.Range(monday).From)
}

func TestParsePeriod(t *testing.T) {
	p, ok := ParsePeriod("Mês Passado")
	assert.True(t, ok)
	assert.Equal(t, LastMonth, p)

	_, ok = ParsePeriod("Amanhã")
	assert.False(t, ok)
}

func TestDeletePolicySince(t *testing.T) {
	assert.Equal(t, time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC), DeleteToday.Since(refNow))
	assert.Equal(t, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), DeleteThisWeek.Since(refNow))
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), DeleteThisMonth.Since(refNow))
	assert.True(t, DeleteAll.Since(refNow).IsZero())
	assert.True(t, DeleteLast.Since(refNow).IsZero())
	assert.False(t, DeletePolicy("ontem").Valid())
}

func TestLastMonths(t *testing.T) {
	months := LastMonths(refNow, 3)
	if assert.Len(t, months, 3) {
		assert.Equal(t, "Nov/2025", months[0].Label)
		assert.Equal(t, "Dez/2025", months[1].Label)
		assert.Equal(t, "Jan/2026", months[2].Label)
		assert.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), months[0].Range.From)
	}
	assert.Nil(t, LastMonths(refNow, 0))
}

func TestRangeAll(t *testing.T) {
	assert.True(t, All.IsAll())
	assert.True(t, All.Contains(time.Time{}))
	assert.True(t, All.Contains(refNow))
}

func TestResetLabels(t *testing.T) {
	for _, p := range ResetPolicies() {
		got, ok := ParseResetLabel(p.Label())
		assert.True(t, ok, p)
		assert.Equal(t, p, got)
	}
	p, ok := ParseResetLabel("Última semana")
	assert.True(t, ok)
	assert.Equal(t, DeleteThisWeek, p)

	_, ok = ParseResetLabel("Ontem")
	assert.False(t, ok)
}
