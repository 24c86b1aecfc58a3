// Package detect runs the amount detection pipeline:
// tokenize -> classify -> finalize with provenance.
package detect

import (
	"context"
	"log/slog"

	"github.com/billscan-dev/billscan/constants"
	"github.com/billscan-dev/billscan/internal/common"
	"github.com/billscan-dev/billscan/internal/llm"
	"github.com/billscan-dev/billscan/internal/tokenize"
)

// Config holds thresholds and behavior flags for the detector.
type Config struct {
	DefaultCurrency    string  // used when no marker appears; default "USD"
	ContextWindow      int     // provenance chars each side of a token; default 20
	ModelConfidence    float64 // reported when the primary classifier succeeds
	FallbackConfidence float64 // reported when the rule-based fallback ran
}

// Detector coordinates the pipeline stages for one request.
type Detector struct {
	logger   *slog.Logger
	cfg      Config
	primary  llm.Classifier // nil when no model is configured
	fallback llm.Classifier
}

func NewDetector(logger *slog.Logger, cfg Config, primary, fallback llm.Classifier) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = constants.DefaultCurrency
	}
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = 20
	}
	if cfg.ModelConfidence <= 0 {
		cfg.ModelConfidence = 0.90
	}
	if cfg.FallbackConfidence <= 0 {
		cfg.FallbackConfidence = 0.50
	}
	return &Detector{logger: logger, cfg: cfg, primary: primary, fallback: fallback}
}

// Detect runs the full pipeline on document text. Guardrail outcomes are
// expressed in the Result, not as errors.
func (d *Detector) Detect(ctx context.Context, text string) Result {
	logger := d.logger
	if rid := common.RequestIDFromContext(ctx); rid != "" {
		logger = logger.With("req_id", rid)
	}

	scan := tokenize.Scan(text)
	if len(scan.Tokens) == 0 {
		logger.Info("detect.tokenize.empty", "text_len", len(text))
		return NoAmounts("document too noisy or no numeric tokens found")
	}
	logger.Info("detect.tokenize.ok",
		"tokens", len(scan.Tokens),
		"currency_hint", scan.CurrencyHint,
	)

	req := llm.ClassifyRequest{
		DocumentText: text,
		Amounts:      tokenAmounts(scan.Tokens),
		AllowedTypes: constants.AmountTypesAsStrings(),
		CurrencyHint: scan.CurrencyHint,
	}

	classified, confidence := d.classify(ctx, logger, req)
	if len(classified) == 0 {
		return NoAmounts("classification produced no amounts")
	}

	return d.finalize(logger, text, scan, classified, confidence)
}

// classify tries the primary classifier and falls back to rules on failure.
func (d *Detector) classify(ctx context.Context, logger *slog.Logger, req llm.ClassifyRequest) ([]llm.ClassifiedAmount, float64) {
	if d.primary != nil {
		classified, err := d.primary.ClassifyAmounts(ctx, req)
		if err == nil {
			logger.Info("detect.classify.ok", "amounts", len(classified))
			return classified, d.cfg.ModelConfidence
		}
		logger.Warn("detect.classify.fallback", "error", err)
	} else {
		logger.Debug("detect.classify.no_model")
	}

	classified, err := d.fallback.ClassifyAmounts(ctx, req)
	if err != nil {
		// The rule-based classifier is total; an error here is a bug.
		logger.Error("detect.classify.fallback_failed", "error", err)
		return nil, 0
	}
	return classified, d.cfg.FallbackConfidence
}

func tokenAmounts(tokens []tokenize.Token) []llm.TokenAmount {
	out := make([]llm.TokenAmount, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, llm.TokenAmount{RawToken: t.Raw, Value: t.Value})
	}
	return out
}
