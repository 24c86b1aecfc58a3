// Package tokenize extracts numeric candidate tokens from noisy OCR text.
//
// OCR output confuses look-alike glyphs (l/I for 1, O for 0, S for 5, B for 8),
// so a token like "l200" is a plausible rendering of "1200". The scanner keeps
// those letters inside candidate tokens, applies the confusion table, and only
// then parses the result as a number.
package tokenize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/billscan-dev/billscan/constants"
)

// Token is one numeric candidate found in the document.
type Token struct {
	Raw       string          // verbatim slice of the document
	Corrected string          // after confusion mapping, separators stripped
	Value     decimal.Decimal // parsed from Corrected
	Start     int             // byte offset of Raw in the document
	End       int             // byte offset just past Raw
}

// Result is the outcome of a scan. Tokens appear in document order.
type Result struct {
	Tokens       []Token
	CurrencyHint string // resolved code ("RS", "USD", ...) or "" when absent
}

// Candidate runs: digits and confusable letters, with interior , or . groups.
var reCandidate = regexp.MustCompile(`[0-9lIOoSB]+(?:[.,][0-9lIOoSB]+)*`)

// Currency markers: word-bounded codes plus bare symbols.
var reCurrencyWord = regexp.MustCompile(`(?i)\b(INR|Rs|USD|EUR|GBP)\b`)
var reCurrencySym = regexp.MustCompile(`[$€£₹]`)

var confusionTable = map[rune]rune{
	'l': '1',
	'I': '1',
	'O': '0',
	'o': '0',
	'S': '5',
	'B': '8',
}

// Scan extracts numeric tokens and a currency hint from text.
// It fails softly: no matches yields an empty token slice, never an error.
func Scan(text string) Result {
	res := Result{CurrencyHint: currencyHint(text)}

	for _, loc := range reCandidate.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		raw := text[start:end]

		// Tokens glued to ordinary letters are fragments of words
		// ("T0tal", "Pald"), not amounts.
		if adjacentLetter(text, start, end) {
			continue
		}
		if !strings.ContainsAny(raw, "0123456789") {
			continue
		}

		corrected := correct(raw)
		value, err := decimal.NewFromString(corrected)
		if err != nil {
			continue
		}

		// Single-digit integers are overwhelmingly noise (list markers,
		// quantities, fragments of split words).
		if !strings.Contains(corrected, ".") && len(strings.TrimLeft(corrected, "-")) < 2 {
			continue
		}

		res.Tokens = append(res.Tokens, Token{
			Raw:       raw,
			Corrected: corrected,
			Value:     value,
			Start:     start,
			End:       end,
		})
	}
	return res
}

// correct applies the confusion table and strips thousands separators.
func correct(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if d, ok := confusionTable[r]; ok {
			r = d
		}
		if r == ',' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// adjacentLetter reports whether the candidate at [start,end) touches an ASCII
// letter outside the confusion set on either side.
func adjacentLetter(text string, start, end int) bool {
	if start > 0 {
		if c := text[start-1]; isPlainLetter(c) {
			return true
		}
	}
	if end < len(text) {
		if c := text[end]; isPlainLetter(c) {
			return true
		}
	}
	return false
}

func isPlainLetter(c byte) bool {
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
		_, confusable := confusionTable[rune(c)]
		return !confusable
	}
	return false
}

// currencyHint returns the resolved code for the first currency marker in the
// text, or "" when none is present.
func currencyHint(text string) string {
	wordLoc := reCurrencyWord.FindStringIndex(text)
	symLoc := reCurrencySym.FindStringIndex(text)

	var marker string
	switch {
	case wordLoc == nil && symLoc == nil:
		return ""
	case wordLoc == nil:
		marker = text[symLoc[0]:symLoc[1]]
	case symLoc == nil || wordLoc[0] < symLoc[0]:
		marker = text[wordLoc[0]:wordLoc[1]]
	default:
		marker = text[symLoc[0]:symLoc[1]]
	}

	if code, ok := constants.ResolveCurrencyMarker(marker); ok {
		return code
	}
	return strings.ToUpper(marker)
}
