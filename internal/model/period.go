package model

import "time"

// Period is a date window over transaction dates. The lower bound is always
// inclusive; the upper bound is exclusive when Open is set.
type Period struct {
	From time.Time
	To   time.Time
	Open bool
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d time.Time) bool {
	if d.Before(p.From) {
		return false
	}
	if p.Open {
		return d.Before(p.To)
	}
	return !d.After(p.To)
}

// MonthPeriod returns the reporting window of a calendar month: half-open
// [first, first of next) for January..November and closed [Dec 1, Dec 31]
// for December.
func MonthPeriod(year, month int) Period {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	if month == 12 {
		return Period{From: from, To: time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)}
	}
	return Period{From: from, To: from.AddDate(0, 1, 0), Open: true}
}

// Through returns the cumulative window ending on asOf, inclusive.
func Through(asOf time.Time) Period {
	return Period{To: Day(asOf)}
}

// YearThrough returns [Jan 1 of year, asOf].
func YearThrough(year int, asOf time.Time) Period {
	return Period{From: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC), To: Day(asOf)}
}

// MonthEnd returns the last calendar day of the month.
func MonthEnd(year, month int) time.Time {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
}

// InYearMonth reports whether d is in the given year and, when month is
// non-zero, the given month. A zero year matches everything.
func InYearMonth(d time.Time, year, month int) bool {
	if year == 0 {
		return true
	}
	if d.Year() != year {
		return false
	}
	return month == 0 || int(d.Month()) == month
}
