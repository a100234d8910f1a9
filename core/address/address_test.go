package address

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        Address
		wantOutcome ParseOutcome
	}{
		{
			name:        "simple",
			input:       "123 1st St, Bothell, WA 98021",
			want:        Address{Street: "123 1st St", City: "Bothell", State: "WA", Zip: "98021"},
			wantOutcome: MatchedSimple,
		},
		{
			name:        "with unit",
			input:       "123 1st St, Apt 4B, Bothell, WA 98021",
			want:        Address{Street: "123 1st St", Street2: "Apt 4B", City: "Bothell", State: "WA", Zip: "98021"},
			wantOutcome: MatchedWithUnit,
		},
		{
			name:        "with suite",
			input:       "500 Main Ave, Suite 210, Spokane, WA 99201",
			want:        Address{Street: "500 Main Ave", Street2: "Suite 210", City: "Spokane", State: "WA", Zip: "99201"},
			wantOutcome: MatchedWithUnit,
		},
		{
			name:        "full state name",
			input:       "9 Elm Rd, Albany, New York 12203",
			want:        Address{Street: "9 Elm Rd", City: "Albany", State: "NY", Zip: "12203"},
			wantOutcome: MatchedSimple,
		},
		{
			name:        "zip plus4",
			input:       "77 Pine St, Tacoma, WA 98402-1234",
			want:        Address{Street: "77 Pine St", City: "Tacoma", State: "WA", Zip: "98402-1234"},
			wantOutcome: MatchedSimple,
		},
		{
			name:        "lowercase state code",
			input:       "12 Oak Dr, Kirkland, wa 98033",
			want:        Address{Street: "12 Oak Dr", City: "Kirkland", State: "WA", Zip: "98033"},
			wantOutcome: MatchedSimple,
		},
		{
			name:        "unparsed",
			input:       "somewhere on the east side",
			want:        Address{Street: "somewhere on the east side"},
			wantOutcome: Unparsed,
		},
		{
			name:        "missing zip falls through",
			input:       "123 1st St, Bothell, WA",
			want:        Address{Street: "123 1st St, Bothell, WA"},
			wantOutcome: Unparsed,
		},
		{
			name:        "empty",
			input:       "",
			want:        Address{},
			wantOutcome: Unparsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := Parse(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOutcome, outcome)
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	addrs := []Address{
		{Street: "123 1st St", City: "Bothell", State: "WA", Zip: "98021"},
		{Street: "123 1st St", Street2: "Apt 7", City: "Bothell", State: "WA", Zip: "98021"},
		{Street: "9 Elm Rd", City: "Albany", State: "NY", Zip: "12203-4455"},
	}
	for _, a := range addrs {
		got, outcome := Parse(a.Format())
		assert.Equal(t, a, got, "round-tripping %q", a.Format())
		assert.NotEqual(t, Unparsed, outcome)
	}
}

func TestNormalizeState(t *testing.T) {
	// every full name in any case and with extra whitespace resolves
	for name, code := range stateAbbrevs {
		assert.Equal(t, code, NormalizeState(name))
		assert.Equal(t, code, NormalizeState(strings.ToUpper(name)))
		assert.Equal(t, code, NormalizeState("  "+titleCase(name)+"  "))
	}

	// 2-letter codes uppercase
	assert.Equal(t, "WA", NormalizeState("wa"))
	assert.Equal(t, "WA", NormalizeState("WA"))
	assert.Equal(t, "NY", NormalizeState("Ny"))

	// unrecognized passes through unchanged
	assert.Equal(t, "Cascadia", NormalizeState("Cascadia"))
	assert.Equal(t, "zz", NormalizeState("zz"))
	assert.Equal(t, "", NormalizeState(""))
}

// titleCase uppercases the first letter of each word. State names are ASCII.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func TestValid(t *testing.T) {
	assert.True(t, Address{Street: "1 A St", City: "B", State: "WA", Zip: "98021"}.Valid())
	assert.False(t, Address{Street: "1 A St", City: "B", State: "WA"}.Valid())
	assert.False(t, Address{Street: "only street"}.Valid())
	assert.False(t, Address{}.Valid())
}
