package guardian

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

var (
	errAddressIncomplete = "address must include street, city, state and zip"
	errUnknownState      = "must be a valid 2-letter state code"

	// pwdMaxSim bounds how close a new password may be to account attributes.
	pwdMaxSim = .7
)

// cleanPhone strips every non-digit so "(206) 555-0147" validates as 10 digits.
func cleanPhone(p string) string {
	var b strings.Builder
	for _, r := range p {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// passwordTooSimilar reports whether pwd is close to any of the account
// attributes (name, email). Applied on password resets.
func passwordTooSimilar(pwd string, attrs ...string) bool {
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		m := difflib.NewMatcher(strings.Split(strings.ToLower(pwd), ""), strings.Split(strings.ToLower(attr), ""))
		if m.QuickRatio() >= pwdMaxSim {
			return true
		}
	}
	return false
}
