// Package rules is the deterministic fallback classifier: it assigns a type to
// each amount from label keywords appearing shortly before the token in the
// document. Used when no LLM is configured or every model attempt failed.
package rules

import (
	"context"
	"log/slog"
	"strings"

	"github.com/billscan-dev/billscan/constants"
	"github.com/billscan-dev/billscan/internal/llm"
)

// lookback is how many characters before a token we search for a label.
const lookback = 40

// vocab maps label keywords to amount types. Longer phrases are listed so that
// the closest (rightmost) hit wins; "grand total" and "total" both resolve to
// total_bill anyway.
var vocab = []struct {
	keyword string
	typ     constants.AmountType
}{
	{"grand total", constants.TotalBill},
	{"amount payable", constants.TotalBill},
	{"net payable", constants.TotalBill},
	{"total", constants.TotalBill},
	{"amount paid", constants.Paid},
	{"payment", constants.Paid},
	{"received", constants.Paid},
	{"paid", constants.Paid},
	{"balance due", constants.Due},
	{"amount due", constants.Due},
	{"outstanding", constants.Due},
	{"balance", constants.Due},
	{"due", constants.Due},
	{"sales tax", constants.Tax},
	{"cgst", constants.Tax},
	{"sgst", constants.Tax},
	{"gst", constants.Tax},
	{"vat", constants.Tax},
	{"tax", constants.Tax},
	{"discount", constants.Discount},
	{"rebate", constants.Discount},
	{"% off", constants.Discount},
	{"surcharge", constants.OtherFee},
	{"service charge", constants.OtherFee},
	{"charge", constants.OtherFee},
	{"fee", constants.OtherFee},
}

type Classifier struct {
	logger *slog.Logger
}

func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger}
}

// ClassifyAmounts assigns a type to every requested amount. It never errors
// and never drops an amount; tokens with no nearby label default to item_cost.
func (c *Classifier) ClassifyAmounts(_ context.Context, req llm.ClassifyRequest) ([]llm.ClassifiedAmount, error) {
	text := strings.ToLower(req.DocumentText)

	out := make([]llm.ClassifiedAmount, 0, len(req.Amounts))
	searchFrom := 0
	for _, a := range req.Amounts {
		// Locate this occurrence; repeated tokens advance through the text.
		idx := strings.Index(text[searchFrom:], strings.ToLower(a.RawToken))
		typ := constants.ItemCost
		if idx >= 0 {
			abs := searchFrom + idx
			typ = classifyWindow(text, abs)
			searchFrom = abs + len(a.RawToken)
		}
		out = append(out, llm.ClassifiedAmount{
			Type:     string(typ),
			Value:    a.Value,
			RawToken: a.RawToken,
		})
	}

	c.logger.Debug("rules.classify.ok", "amounts", len(out))
	return out, nil
}

// labelFold undoes digit-for-letter OCR confusions inside label words, so a
// window containing "t0tal" still hits the "total" keyword.
var labelFold = strings.NewReplacer("0", "o", "1", "l", "5", "s", "8", "b")

// classifyWindow picks the label keyword closest before the token. The window
// stops at field separators so a label from the previous field ("Total: 1200 |
// Pald: 1000") cannot bleed into this one.
func classifyWindow(text string, tokenStart int) constants.AmountType {
	lo := tokenStart - lookback
	if lo < 0 {
		lo = 0
	}
	window := text[lo:tokenStart]
	if i := strings.LastIndexAny(window, "|\n"); i >= 0 {
		window = window[i+1:]
	}
	window = labelFold.Replace(window)

	best := -1
	typ := constants.ItemCost
	for _, v := range vocab {
		if i := strings.LastIndex(window, v.keyword); i > best {
			best = i
			typ = v.typ
		}
	}
	return typ
}
