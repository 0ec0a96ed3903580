package core

import (
	"fmt"
	"time"
)

// Range is a closed time interval. A zero From or To leaves that side open.
type Range struct {
	From time.Time
	To   time.Time
}

// All is the unbounded range.
var All = Range{}

func (r Range) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

func (r Range) IsAll() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Period is a named statement filter offered to the user.
type Period string

const (
	Today     Period = "Hoje"
	ThisWeek  Period = "Esta Semana"
	ThisMonth Period = "Este Mês"
	LastMonth Period = "Mês Passado"
	ThisYear  Period = "Este Ano"
)

// Periods lists the statement filters in menu order.
func Periods() []Period {
	return []Period{Today, ThisWeek, ThisMonth, LastMonth, ThisYear}
}

// ParsePeriod matches a menu label exactly.
func ParsePeriod(label string) (Period, bool) {
	for _, p := range Periods() {
		if string(p) == label {
			return p, true
		}
	}
	return "", false
}

// Range resolves the period relative to now, in now's location.
func (p Period) Range(now time.Time) Range {
	day := startOfDay(now)
	switch p {
	case Today:
		return Range{From: day, To: endOf(day.AddDate(0, 0, 1))}
	case ThisWeek:
		monday := startOfWeek(now)
		return Range{From: monday, To: endOf(monday.AddDate(0, 0, 7))}
	case ThisMonth:
		first := startOfMonth(now)
		return Range{From: first, To: endOf(first.AddDate(0, 1, 0))}
	case LastMonth:
		first := startOfMonth(now).AddDate(0, -1, 0)
		return Range{From: first, To: endOf(first.AddDate(0, 1, 0))}
	case ThisYear:
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return Range{From: first, To: endOf(first.AddDate(1, 0, 0))}
	default:
		return All
	}
}

// DeletePolicy selects which of an owner's transactions a reset removes.
type DeletePolicy string

const (
	DeleteLast      DeletePolicy = "ultimo"
	DeleteToday     DeletePolicy = "dia"
	DeleteThisWeek  DeletePolicy = "semana"
	DeleteThisMonth DeletePolicy = "mes"
	DeleteAll       DeletePolicy = "tudo"
)

func (p DeletePolicy) Valid() bool {
	switch p {
	case DeleteLast, DeleteToday, DeleteThisWeek, DeleteThisMonth, DeleteAll:
		return true
	}
	return false
}

// ResetPolicies lists the delete policies in menu order.
func ResetPolicies() []DeletePolicy {
	return []DeletePolicy{DeleteLast, DeleteToday, DeleteThisWeek, DeleteThisMonth, DeleteAll}
}

// Label is the reset menu button for the policy.
func (p DeletePolicy) Label() string {
	switch p {
	case DeleteLast:
		return "Último valor"
	case DeleteToday:
		return "Hoje"
	case DeleteThisWeek:
		return "Última semana"
	case DeleteThisMonth:
		return "Este mês"
	case DeleteAll:
		return "Tudo"
	default:
		return string(p)
	}
}

// ParseResetLabel matches a reset menu button exactly.
func ParseResetLabel(label string) (DeletePolicy, bool) {
	for _, p := range ResetPolicies() {
		if p.Label() == label {
			return p, true
		}
	}
	return "", false
}

// Since returns the lower bound of a range policy. DeleteLast and DeleteAll
// have no bound and return the zero time.
func (p DeletePolicy) Since(now time.Time) time.Time {
	switch p {
	case DeleteToday:
		return startOfDay(now)
	case DeleteThisWeek:
		return startOfWeek(now)
	case DeleteThisMonth:
		return startOfMonth(now)
	default:
		return time.Time{}
	}
}

// Month is one bucket of a monthly series.
type Month struct {
	Label string
	Range Range
}

var monthAbbr = [...]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// LastMonths returns the n calendar months ending with the month of now,
// oldest first.
func LastMonths(now time.Time, n int) []Month {
	if n < 1 {
		return nil
	}
	current := startOfMonth(now)
	out := make([]Month, 0, n)
	for i := n - 1; i >= 0; i-- {
		first := current.AddDate(0, -i, 0)
		out = append(out, Month{
			Label: fmt.Sprintf("%s/%d", monthAbbr[first.Month()-1], first.Year()),
			Range: Range{From: first, To: endOf(first.AddDate(0, 1, 0))},
		})
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return startOfDay(t).AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// endOf returns the last representable instant before next.
func endOf(next time.Time) time.Time {
	return next.Add(-time.Nanosecond)
}
