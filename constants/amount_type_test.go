package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeAmountType(t *testing.T) {
	cases := []struct {
		input string
		want  AmountType
		ok    bool
	}{
		{"total_bill", TotalBill, true},
		{"Grand Total", TotalBill, true},
		{"total", TotalBill, true},
		{"net-payable", TotalBill, true},
		{"paid", Paid, true},
		{"Payment", Paid, true},
		{"balance_due", Due, true},
		{"outstanding", Due, true},
		{"GST", Tax, true},
		{"vat", Tax, true},
		{"rebate", Discount, true},
		{"line item", ItemCost, true},
		{"service charge", OtherFee, true},
		{"mystery", OtherFee, false},
		{"", OtherFee, false},
	}

	for _, tc := range cases {
		got, ok := CanonicalizeAmountType(tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
	}
}

func TestAmountTypesAsStrings(t *testing.T) {
	got := AmountTypesAsStrings()
	assert.Equal(t, []string{
		"total_bill", "paid", "due", "tax", "discount", "item_cost", "other_fee",
	}, got)
}

func TestResolveCurrencyMarker(t *testing.T) {
	for marker, want := range map[string]string{
		"Rs":  "RS",
		"rs":  "RS",
		"INR": "INR",
		"$":   "USD",
		"€":   "EUR",
		"£":   "GBP",
	} {
		got, ok := ResolveCurrencyMarker(marker)
		assert.True(t, ok, "marker %q", marker)
		assert.Equal(t, want, got, "marker %q", marker)
	}

	_, ok := ResolveCurrencyMarker("BTC")
	assert.False(t, ok)
}

func TestMapExtToFormat(t *testing.T) {
	assert.Equal(t, PDF, MapExtToFormat(".PDF"))
	assert.Equal(t, IMAGE, MapExtToFormat("jpeg"))
	assert.Equal(t, TXT, MapExtToFormat(".txt"))
	assert.Equal(t, "", MapExtToFormat(".docx"))
}
