package constants

import "strings"

// DefaultCurrency is used when no currency marker appears in the document.
const DefaultCurrency = "USD"

// currencyMarkers maps markers as they appear in bill text (uppercased) to the
// code we report. Symbols map to their most common code; textual markers are
// reported as-is so provenance stays honest ("Rs" -> "RS", not "INR").
var currencyMarkers = map[string]string{
	"INR": "INR",
	"RS":  "RS",
	"$":   "USD",
	"USD": "USD",
	"EUR": "EUR",
	"GBP": "GBP",
	"€":   "EUR",
	"£":   "GBP",
}

// ResolveCurrencyMarker normalizes a raw marker token to a reportable code.
func ResolveCurrencyMarker(marker string) (string, bool) {
	code, ok := currencyMarkers[strings.ToUpper(strings.TrimSpace(marker))]
	return code, ok
}
