package llm

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

const maxPromptTextBytes = 3000

// BuildSystemPrompt composes the system message: role, enum discipline, and
// formatting hygiene the validator depends on.
func BuildSystemPrompt(req ClassifyRequest) string {
	types := req.AllowedTypes
	parts := []string{
		"You are a financial document classifier for medical bills and receipts.",
		"Return ONLY JSON that matches the provided JSON Schema: an object with a single 'amounts' array.",
		"Classify every detected amount as exactly one of: " + strings.Join(types, ", ") + ".",
		"Use the text surrounding each amount to decide. Labels like 'Total' or 'Grand Total' mean total_bill; 'Paid' or 'Received' mean paid; 'Due' or 'Balance' mean due; GST/VAT mean tax; line items mean item_cost; other surcharges mean other_fee.",
		"Echo 'raw_token' exactly as given in the mapping; never invent amounts that are not in the mapping.",
		"Never output null. Never wrap the JSON in markdown fences.",
	}
	if cur := strings.TrimSpace(req.CurrencyHint); cur != "" {
		parts = append(parts, "Amounts are denominated in "+cur+".")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the document text (truncated) with the
// token-to-value mapping the model must classify.
func BuildUserPrompt(req ClassifyRequest) string {
	mapping := make([]map[string]any, 0, len(req.Amounts))
	for _, a := range req.Amounts {
		mapping = append(mapping, map[string]any{
			"raw_token": a.RawToken,
			"value":     json.Number(a.Value.String()),
		})
	}
	mappingJSON, _ := json.Marshal(mapping)

	text := strings.TrimSpace(req.DocumentText)

	var b strings.Builder
	b.WriteString("Document text (first ~3k chars):\n")
	if len(text) > maxPromptTextBytes {
		// back up to a rune boundary so the cut never splits a multi-byte char
		cut := maxPromptTextBytes
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		b.WriteString(text[:cut])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	b.WriteString("\n\nThe detected and normalized amounts are: ")
	b.Write(mappingJSON)
	b.WriteString("\nClassify each amount.")
	return b.String()
}
