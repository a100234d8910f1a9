// Package address parses single-line US mailing addresses into structured
// fields and formats them back for submission.
package address

import (
	"regexp"
	"strings"
)

// ParseOutcome reports how confidently an input line was parsed.
type ParseOutcome int

const (
	// Unparsed means neither pattern matched; the whole input is kept in Street.
	Unparsed ParseOutcome = iota
	// MatchedSimple means the "street, city, state zip" fallback matched.
	MatchedSimple
	// MatchedWithUnit means the full pattern with a unit designator matched.
	MatchedWithUnit
)

func (o ParseOutcome) String() string {
	switch o {
	case MatchedWithUnit:
		return "matched-with-unit"
	case MatchedSimple:
		return "matched-simple"
	}
	return "unparsed"
}

// Address holds the structured components of a US mailing address.
type Address struct {
	Street  string `json:"street"`
	Street2 string `json:"street2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

var (
	// street, unit-designator unit, city, state zip[-plus4]
	withUnitRegex = regexp.MustCompile(
		`(?i)^\s*([^,]+?),\s*((?:apt|apartment|suite|ste|unit|bldg|#)\.?\s*[^,]*?),\s*([^,]+?),\s*([A-Za-z][A-Za-z. ]*?)\s+(\d{5}(?:-\d{4})?)\s*$`)

	// street, city, state zip[-plus4]
	simpleRegex = regexp.MustCompile(
		`^\s*([^,]+?),\s*([^,]+?),\s*([A-Za-z][A-Za-z. ]*?)\s+(\d{5}(?:-\d{4})?)\s*$`)
)

// Parse converts a free-text address line into structured fields.
// It never fails: input that matches neither pattern is returned whole in
// Street with the outcome Unparsed so callers can tell best-effort results
// from confident ones.
func Parse(input string) (Address, ParseOutcome) {
	if m := withUnitRegex.FindStringSubmatch(input); m != nil {
		return Address{
			Street:  strings.TrimSpace(m[1]),
			Street2: strings.TrimSpace(m[2]),
			City:    strings.TrimSpace(m[3]),
			State:   NormalizeState(strings.TrimSpace(m[4])),
			Zip:     m[5],
		}, MatchedWithUnit
	}
	if m := simpleRegex.FindStringSubmatch(input); m != nil {
		return Address{
			Street: strings.TrimSpace(m[1]),
			City:   strings.TrimSpace(m[2]),
			State:  NormalizeState(strings.TrimSpace(m[3])),
			Zip:    m[4],
		}, MatchedSimple
	}
	return Address{Street: strings.TrimSpace(input)}, Unparsed
}

// Valid reports whether street, city, state and zip are all present.
func (a Address) Valid() bool {
	return a.Street != "" && a.City != "" && a.State != "" && a.Zip != ""
}

// Format joins the fields back into the canonical
// "street[, street2], city, state zip" single-line form.
func (a Address) Format() string {
	var b strings.Builder
	b.WriteString(a.Street)
	if a.Street2 != "" {
		b.WriteString(", ")
		b.WriteString(a.Street2)
	}
	b.WriteString(", ")
	b.WriteString(a.City)
	b.WriteString(", ")
	b.WriteString(a.State)
	b.WriteString(" ")
	b.WriteString(a.Zip)
	return b.String()
}

// IsZero reports whether no component is set.
func (a Address) IsZero() bool {
	return a == Address{}
}
