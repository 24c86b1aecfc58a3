package detect

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/billscan-dev/billscan/constants"
)

// Status is the outcome of a detection request.
type Status string

const (
	StatusOK        Status = "ok"
	StatusNoAmounts Status = "no_amounts_found"
)

// ExtractedAmount is one classified amount with provenance. Immutable once
// classified.
type ExtractedAmount struct {
	Value  decimal.Decimal
	Type   constants.AmountType
	Source string // verbatim substring of the input text
}

// MarshalJSON emits the value as a JSON number, not decimal's default string.
func (a ExtractedAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value  json.Number `json:"value"`
		Type   string      `json:"type"`
		Source string      `json:"source"`
	}{
		Value:  json.Number(a.Value.String()),
		Type:   string(a.Type),
		Source: a.Source,
	})
}

// UnmarshalJSON accepts the wire shape produced by MarshalJSON.
func (a *ExtractedAmount) UnmarshalJSON(data []byte) error {
	var wire struct {
		Value  decimal.Decimal `json:"value"`
		Type   string          `json:"type"`
		Source string          `json:"source"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	a.Value = wire.Value
	a.Type = constants.AmountType(wire.Type)
	a.Source = wire.Source
	return nil
}

// Result is constructed once per request, returned, and discarded.
// Guardrail responses carry only Status and Reason.
type Result struct {
	Status     Status            `json:"status"`
	Reason     string            `json:"reason,omitempty"`
	Currency   string            `json:"currency,omitempty"`
	Amounts    []ExtractedAmount `json:"amounts,omitempty"`
	Confidence float64           `json:"confidence,omitempty"`
}

// NoAmounts builds the guardrail result.
func NoAmounts(reason string) Result {
	return Result{Status: StatusNoAmounts, Reason: reason}
}
