package bring

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// ToISO2CountryCode normalizes an ISO 3166 alpha-2 or alpha-3 country code
// to alpha-2. Codes that are not recognized are returned trimmed and
// upper-cased.
func ToISO2CountryCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return strings.ToUpper(code)
	}
	return region.String()
}

// normalizeCurrency returns the canonical ISO 4217 code, or the input
// upper-cased when it is not a known currency.
func normalizeCurrency(code string) string {
	code = strings.TrimSpace(code)
	unit, err := currency.ParseISO(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	return unit.String()
}
