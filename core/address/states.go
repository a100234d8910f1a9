package address

import "strings"

// stateAbbrevs maps lowercased state names to their USPS codes.
var stateAbbrevs = map[string]string{
	"alabama":              "AL",
	"alaska":               "AK",
	"arizona":              "AZ",
	"arkansas":             "AR",
	"california":           "CA",
	"colorado":             "CO",
	"connecticut":          "CT",
	"delaware":             "DE",
	"florida":              "FL",
	"georgia":              "GA",
	"hawaii":               "HI",
	"idaho":                "ID",
	"illinois":             "IL",
	"indiana":              "IN",
	"iowa":                 "IA",
	"kansas":               "KS",
	"kentucky":             "KY",
	"louisiana":            "LA",
	"maine":                "ME",
	"maryland":             "MD",
	"massachusetts":        "MA",
	"michigan":             "MI",
	"minnesota":            "MN",
	"mississippi":          "MS",
	"missouri":             "MO",
	"montana":              "MT",
	"nebraska":             "NE",
	"nevada":               "NV",
	"new hampshire":        "NH",
	"new jersey":           "NJ",
	"new mexico":           "NM",
	"new york":             "NY",
	"north carolina":       "NC",
	"north dakota":         "ND",
	"ohio":                 "OH",
	"oklahoma":             "OK",
	"oregon":               "OR",
	"pennsylvania":         "PA",
	"rhode island":         "RI",
	"south carolina":       "SC",
	"south dakota":         "SD",
	"tennessee":            "TN",
	"texas":                "TX",
	"utah":                 "UT",
	"vermont":              "VT",
	"virginia":             "VA",
	"washington":           "WA",
	"west virginia":        "WV",
	"wisconsin":            "WI",
	"wyoming":              "WY",
	"district of columbia": "DC",
}

var stateCodes = makeStateCodes()

func makeStateCodes() map[string]struct{} {
	codes := make(map[string]struct{}, len(stateAbbrevs))
	for _, code := range stateAbbrevs {
		codes[code] = struct{}{}
	}
	return codes
}

// NormalizeState maps a full state name (any case, extra whitespace) to its
// 2-letter USPS code and uppercases inputs that already are one.
// Unrecognized input passes through unchanged.
func NormalizeState(input string) string {
	key := strings.Join(strings.Fields(strings.ToLower(input)), " ")
	if code, ok := stateAbbrevs[key]; ok {
		return code
	}
	if IsStateCode(key) {
		return strings.ToUpper(key)
	}
	return input
}

// IsStateCode reports whether s is a recognized 2-letter USPS code, ignoring case.
func IsStateCode(s string) bool {
	_, ok := stateCodes[strings.ToUpper(strings.TrimSpace(s))]
	return ok
}
