package constants

import (
	"strings"
)

// AmountType is the semantic category assigned to a detected amount.
type AmountType string

// Stable wire values (returned verbatim in JSON responses).
const (
	TotalBill AmountType = "total_bill"
	Paid      AmountType = "paid"
	Due       AmountType = "due"
	Tax       AmountType = "tax"
	Discount  AmountType = "discount"
	ItemCost  AmountType = "item_cost"
	OtherFee  AmountType = "other_fee"
)

var allAmountTypes = []AmountType{
	TotalBill,
	Paid,
	Due,
	Tax,
	Discount,
	ItemCost,
	OtherFee,
}

func AmountTypesAsStrings() []string {
	result := make([]string, len(allAmountTypes))
	for i, t := range allAmountTypes {
		result[i] = string(t)
	}
	return result
}

// CanonicalizeAmountType maps a free-form label from the model onto the enum.
// Returns (OtherFee, false) when the label is unrecognized.
func CanonicalizeAmountType(input string) (AmountType, bool) {
	if input == "" {
		return OtherFee, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	// synonyms map
	synonyms := map[string]AmountType{
		"total":          TotalBill,
		"grand_total":    TotalBill,
		"bill_total":     TotalBill,
		"net_payable":    TotalBill,
		"amount_paid":    Paid,
		"payment":        Paid,
		"balance":        Due,
		"balance_due":    Due,
		"amount_due":     Due,
		"outstanding":    Due,
		"gst":            Tax,
		"vat":            Tax,
		"sales_tax":      Tax,
		"cgst":           Tax,
		"sgst":           Tax,
		"rebate":         Discount,
		"concession":     Discount,
		"line_item":      ItemCost,
		"item":           ItemCost,
		"charge":         OtherFee,
		"fee":            OtherFee,
		"service_charge": OtherFee,
	}

	if t, ok := synonyms[normalized]; ok {
		return t, true
	}

	// check if it matches any enum value directly
	for _, t := range allAmountTypes {
		if normalized == string(t) {
			return t, true
		}
	}

	return OtherFee, false
}
