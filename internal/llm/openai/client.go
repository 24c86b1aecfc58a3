package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/billscan-dev/billscan/internal/common"
	"github.com/billscan-dev/billscan/internal/llm"
)

// ClassifyAmounts implements llm.Classifier using text-only chat/completions.
// The model response is sanitized and schema-validated before acceptance;
// a malformed response counts as a failed attempt and is retried with
// exponential backoff (2^attempt base units, context-aware).
func (c *Client) ClassifyAmounts(ctx context.Context, req llm.ClassifyRequest) ([]llm.ClassifiedAmount, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	c.log.Info("llm.classify.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.DocumentText),
		"amounts", len(req.Amounts),
		"allowed_types", len(req.AllowedTypes),
		"currency_hint", req.CurrencyHint,
	)

	schema := llm.BuildClassificationJSONSchema(req.AllowedTypes)
	sys := llm.BuildSystemPrompt(req)
	user := llm.BuildUserPrompt(req)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": sys},
			{"role": "user", "content": user + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := backoff(ctx, attempt, c.cfg.RetryBaseDelay); err != nil {
				return nil, err
			}
			c.log.Warn("llm.classify.retry", "req_id", rid, "attempt", attempt+1, "last_error", lastErr)
		}

		amounts, err := c.classifyOnce(ctx, rid, endpoint, body, headers, schema)
		if err == nil {
			c.log.Info("llm.classify.ok",
				"req_id", rid,
				"attempt", attempt+1,
				"amounts", len(amounts),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return amounts, nil
		}
		lastErr = err
	}

	c.log.Error("llm.classify.exhausted",
		"req_id", rid,
		"attempts", c.cfg.MaxRetries,
		"error", lastErr,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil, fmt.Errorf("classification failed after %d attempts: %w", c.cfg.MaxRetries, lastErr)
}

func (c *Client) classifyOnce(ctx context.Context, rid, endpoint string, body map[string]any, headers map[string]string, schema map[string]any) ([]llm.ClassifiedAmount, error) {
	raw, _, err := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if err != nil {
		return nil, fmt.Errorf("chat/completions: %w", err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, fmt.Errorf("decode response envelope: %w", err)
	}
	if len(cc.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	cleaned, notes, err := llm.SanitizeClassification(content)
	if err != nil {
		return nil, fmt.Errorf("sanitize: %w", err)
	}
	if len(notes) > 0 {
		c.log.Warn("llm.classify.sanitize_applied", "req_id", rid, "notes", notes)
	}

	if err := llm.ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var out struct {
		Amounts []llm.ClassifiedAmount `json:"amounts"`
	}
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return nil, fmt.Errorf("unmarshal amounts: %w", err)
	}
	return out.Amounts, nil
}

// backoff sleeps 2^attempt base units or returns early when ctx is done.
func backoff(ctx context.Context, attempt int, base time.Duration) error {
	t := time.NewTimer(time.Duration(1<<attempt) * base)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
