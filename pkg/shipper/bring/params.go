package bring

import (
	"strings"

	"github.com/tournevent/bringrate/pkg/shipper"
)

// Shipping method parameter names understood by the gateway.
const (
	ParamProductID           = "BringProductId"
	ParamPostingAtPostOffice = "PostingAtPostOffice"
	ParamPostalCodeFrom      = "PostalCodeFrom"
	ParamCountryFrom         = "CountryFrom"
	ParamEdi                 = "EDI"
	ParamAdditionalServices  = "AdditionalServices"
	ParamPriceRounding       = "PriceRounding"
)

// Defaults applied when a parameter is set on neither the method nor its
// shipping option.
const (
	DefaultCountryFrom = "NOR"
	DefaultEdi         = true
	DefaultPostOffice  = false
	DefaultRounding    = false
)

type parameterSource func(name string) (string, bool)

// resolveParameter returns the first non-blank value for name from the
// sources, in order, or def.
func resolveParameter(name, def string, sources ...parameterSource) string {
	for _, source := range sources {
		if v, ok := source(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return def
}

// methodThenOption is the precedence used for every parameter: the method's
// own value overrides the value configured on its shipping option.
func methodThenOption(m *shipper.ShippingMethod) []parameterSource {
	return []parameterSource{m.MethodParameter, m.OptionParameter}
}
