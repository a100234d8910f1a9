// Package season models the camp's enrollment calendar. Registrations and
// payments are always scoped to a (season, year) pair.
package season

import "time"

// Season is one of the four named enrollment periods per calendar year.
type Season string

const (
	Spring Season = "Spring"
	Summer Season = "Summer"
	Fall   Season = "Fall"
	Winter Season = "Winter"
)

// All seasons in chronological order within a year.
var All = []Season{Spring, Summer, Fall, Winter}

// Valid reports whether s is a known season name.
func (s Season) Valid() bool {
	switch s {
	case Spring, Summer, Fall, Winter:
		return true
	}
	return false
}

// Next returns the season chronologically following s, wrapping Winter to Spring.
func (s Season) Next() Season {
	switch s {
	case Spring:
		return Summer
	case Summer:
		return Fall
	case Fall:
		return Winter
	default:
		return Spring
	}
}

// At maps a wall-clock date to its season. The canonical boundary rule is
// whole calendar months: Spring Mar-May, Summer Jun-Aug, Fall Sep-Nov,
// Winter Dec-Feb.
func At(t time.Time) Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	case time.September, time.October, time.November:
		return Fall
	default:
		return Winter
	}
}

// Current returns the season for the current wall-clock date.
func Current() Season {
	return At(time.Now())
}

// NextAt returns the (season, year) pair following the one containing t,
// rolling the year over when the current season is Winter.
// A December date already belongs to the next year's Winter window for
// enrollment purposes, so the returned Spring keeps that forward year.
func NextAt(t time.Time) (Season, int) {
	cur := At(t)
	next := cur.Next()
	year := t.Year()
	if cur == Winter {
		if t.Month() == time.December {
			year++
		}
		return next, year
	}
	return next, year
}

// IsActive reports whether a stored (season, year) registration covers the
// enrollment window containing t. A registration is active when it matches
// the current pair, the next pair (with Winter-to-Spring year rollover), or
// any strictly future year.
func IsActive(s Season, year int, t time.Time) bool {
	if !s.Valid() {
		return false
	}
	cur, curYear := At(t), t.Year()
	if s == cur && year == curYear {
		return true
	}
	next, nextYear := NextAt(t)
	if s == next && year == nextYear {
		return true
	}
	return year > curYear
}
