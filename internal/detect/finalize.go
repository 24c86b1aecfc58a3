package detect

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/billscan-dev/billscan/constants"
	"github.com/billscan-dev/billscan/internal/llm"
	"github.com/billscan-dev/billscan/internal/tokenize"
)

// finalize assembles the response: amounts in token (document) order, each
// carrying a verbatim source snippet, plus the resolved currency.
func (d *Detector) finalize(logger *slog.Logger, text string, scan tokenize.Result, classified []llm.ClassifiedAmount, confidence float64) Result {
	// Classifications are keyed by raw token; duplicates are consumed in order.
	byToken := make(map[string][]llm.ClassifiedAmount, len(classified))
	for _, c := range classified {
		byToken[c.RawToken] = append(byToken[c.RawToken], c)
	}

	amounts := make([]ExtractedAmount, 0, len(scan.Tokens))
	for _, tok := range scan.Tokens {
		queue := byToken[tok.Raw]
		if len(queue) == 0 {
			logger.Warn("detect.finalize.unclassified_token", "raw_token", tok.Raw)
			continue
		}
		c := queue[0]
		byToken[tok.Raw] = queue[1:]

		typ, _ := constants.CanonicalizeAmountType(c.Type)
		amounts = append(amounts, ExtractedAmount{
			Value:  c.Value,
			Type:   typ,
			Source: provenance(text, tok, d.cfg.ContextWindow),
		})
	}
	if len(amounts) == 0 {
		return NoAmounts("classification produced no amounts")
	}

	currency := scan.CurrencyHint
	if currency == "" {
		currency = d.cfg.DefaultCurrency
	}

	return Result{
		Status:     StatusOK,
		Currency:   currency,
		Amounts:    amounts,
		Confidence: confidence,
	}
}

// provenance returns the text window around a token: up to `window` bytes each
// side, clamped to rune boundaries and space-trimmed, so the snippet is always
// a verbatim substring of the input.
func provenance(text string, tok tokenize.Token, window int) string {
	lo := tok.Start - window
	if lo < 0 {
		lo = 0
	}
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}

	hi := tok.End + window
	if hi > len(text) {
		hi = len(text)
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}

	return strings.TrimSpace(text[lo:hi])
}
