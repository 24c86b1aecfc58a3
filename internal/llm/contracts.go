package llm

import (
	"context"

	"github.com/shopspring/decimal"
)

// TokenAmount pairs a raw token as it appeared in the document with its
// normalized numeric value.
type TokenAmount struct {
	RawToken string          `json:"raw_token"`
	Value    decimal.Decimal `json:"value"`
}

// ClassifyRequest carries the document and its detected amounts to a classifier.
type ClassifyRequest struct {
	DocumentText string
	Amounts      []TokenAmount
	AllowedTypes []string
	CurrencyHint string
}

// ClassifiedAmount is one amount with its assigned semantic type.
type ClassifiedAmount struct {
	Type     string          `json:"type"`
	Value    decimal.Decimal `json:"value"`
	RawToken string          `json:"raw_token"`
}

// Classifier is the interface the detection pipeline depends on.
type Classifier interface {
	ClassifyAmounts(ctx context.Context, req ClassifyRequest) ([]ClassifiedAmount, error)
}
