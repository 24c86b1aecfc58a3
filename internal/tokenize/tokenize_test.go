package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(r Result) []string {
	out := make([]string, 0, len(r.Tokens))
	for _, t := range r.Tokens {
		out = append(out, t.Value.String())
	}
	return out
}

func TestScanNoisyBill(t *testing.T) {
	r := Scan("T0tal: Rs l200 | Pald: 1000 | Due: 200 ... tax 50")

	assert.Equal(t, []string{"1200", "1000", "200", "50"}, values(r))
	assert.Equal(t, "RS", r.CurrencyHint)
}

func TestScanDigitConfusions(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercase l for 1", "amount l200", []string{"1200"}},
		{"uppercase I for 1", "amount I50", []string{"150"}},
		{"uppercase O for 0", "paid 1O0", []string{"100"}},
		{"S for 5", "fee S00", []string{"500"}},
		{"B for 8", "fee B00", []string{"800"}},
		{"mixed", "total lO2S", []string{"1025"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, values(Scan(tc.in)))
		})
	}
}

func TestScanRejectsWordFragments(t *testing.T) {
	// Digits glued to ordinary letters are fragments of words, not amounts.
	r := Scan("T0tal Pald am0unt")
	assert.Empty(t, r.Tokens)
}

func TestScanRejectsSingleDigits(t *testing.T) {
	r := Scan("page 1 of 2, item 3")
	assert.Empty(t, r.Tokens)
}

func TestScanKeepsDecimalsAndSeparators(t *testing.T) {
	r := Scan("subtotal 1,234.56 and tax 7.08")
	require.Len(t, r.Tokens, 2)
	assert.Equal(t, "1234.56", r.Tokens[0].Value.String())
	assert.Equal(t, "7.08", r.Tokens[1].Value.String())
}

func TestScanNoDigits(t *testing.T) {
	r := Scan("nothing to see here")
	assert.Empty(t, r.Tokens)
	assert.Empty(t, r.CurrencyHint)
}

func TestScanTokenOffsets(t *testing.T) {
	text := "Due: 200 now"
	r := Scan(text)
	require.Len(t, r.Tokens, 1)
	tok := r.Tokens[0]
	assert.Equal(t, "200", text[tok.Start:tok.End])
	assert.Equal(t, "200", tok.Raw)
}

func TestCurrencyHints(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Rs 100", "RS"},
		{"INR 100", "INR"},
		{"total $45", "USD"},
		{"USD 45", "USD"},
		{"price €30", "EUR"},
		{"EUR 30", "EUR"},
		{"GBP 12", "GBP"},
		{"no marker 12", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Scan(tc.in).CurrencyHint, "input: %s", tc.in)
	}
}

func TestCurrencyHintFirstMarkerWins(t *testing.T) {
	assert.Equal(t, "RS", Scan("Rs 100 then USD 50").CurrencyHint)
}

func TestCurrencyHintNotInsideWords(t *testing.T) {
	// "rs" inside "Hours" is not a currency marker.
	assert.Equal(t, "", Scan("Hours worked: 40").CurrencyHint)
}
