package rules

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billscan-dev/billscan/internal/llm"
)

func amount(raw string, v int64) llm.TokenAmount {
	return llm.TokenAmount{RawToken: raw, Value: decimal.NewFromInt(v)}
}

func classify(t *testing.T, text string, amounts ...llm.TokenAmount) []llm.ClassifiedAmount {
	t.Helper()
	out, err := NewClassifier(nil).ClassifyAmounts(context.Background(), llm.ClassifyRequest{
		DocumentText: text,
		Amounts:      amounts,
	})
	require.NoError(t, err)
	require.Len(t, out, len(amounts))
	return out
}

func TestClassifyByNearbyLabel(t *testing.T) {
	text := "Total: 1200 | Paid: 1000 | Due: 200 | tax 50 | discount 30"
	out := classify(t, text,
		amount("1200", 1200),
		amount("1000", 1000),
		amount("200", 200),
		amount("50", 50),
		amount("30", 30),
	)

	assert.Equal(t, "total_bill", out[0].Type)
	assert.Equal(t, "paid", out[1].Type)
	assert.Equal(t, "due", out[2].Type)
	assert.Equal(t, "tax", out[3].Type)
	assert.Equal(t, "discount", out[4].Type)
}

func TestClassifyOCRConfusedLabels(t *testing.T) {
	// "T0tal" should still read as a total label.
	out := classify(t, "T0tal: Rs l200", amount("l200", 1200))
	assert.Equal(t, "total_bill", out[0].Type)
}

func TestClassifyDefaultsToItemCost(t *testing.T) {
	out := classify(t, "widget 450", amount("450", 450))
	assert.Equal(t, "item_cost", out[0].Type)
}

func TestClassifyClosestLabelWins(t *testing.T) {
	// "tax" is closer to 50 than "total" is.
	out := classify(t, "total before tax 50", amount("50", 50))
	assert.Equal(t, "tax", out[0].Type)
}

func TestClassifyRepeatedTokens(t *testing.T) {
	text := "paid 200 and due 200"
	out := classify(t, text, amount("200", 200), amount("200", 200))
	assert.Equal(t, "paid", out[0].Type)
	assert.Equal(t, "due", out[1].Type)
}

func TestClassifyLabelStopsAtSeparator(t *testing.T) {
	// "Total" belongs to the first field; the bare 999 after the pipe must
	// not inherit it.
	out := classify(t, "Total: 1200 | 999", amount("1200", 1200), amount("999", 999))
	assert.Equal(t, "total_bill", out[0].Type)
	assert.Equal(t, "item_cost", out[1].Type)
}

func TestClassifyMangledLabelDoesNotInherit(t *testing.T) {
	// "Pald" is OCR damage we cannot fold back to "paid"; the amount should
	// default rather than pick up "T0tal" from the previous field.
	out := classify(t, "T0tal: Rs l200 | Pald: 1000", amount("l200", 1200), amount("1000", 1000))
	assert.Equal(t, "total_bill", out[0].Type)
	assert.Equal(t, "item_cost", out[1].Type)
}

func TestClassifyLabelStopsAtNewline(t *testing.T) {
	out := classify(t, "discount applied\n300", amount("300", 300))
	assert.Equal(t, "item_cost", out[0].Type)
}

func TestClassifyEchoesValues(t *testing.T) {
	out := classify(t, "due 200", amount("200", 200))
	assert.Equal(t, "200", out[0].Value.String())
	assert.Equal(t, "200", out[0].RawToken)
}
