package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/billscan-dev/billscan/constants"
)

// SanitizeClassification normalizes a model response before schema validation:
//   - strips markdown code fences some models wrap JSON in
//   - accepts a bare array root and wraps it as {"amounts": [...]}
//   - renames known synonym keys (category -> type, amount -> value, ...)
//   - coerces string numbers to numbers and numeric raw tokens to strings
//   - canonicalizes the type label onto the enum
//   - drops items missing a usable value or raw token, and unknown keys
//
// Returns the cleaned document plus notes about what was touched.
func SanitizeClassification(raw []byte) ([]byte, []string, error) {
	doc := stripCodeFences(raw)

	var notes []string

	var root any
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var items []any
	switch t := root.(type) {
	case []any:
		items = t
		notes = append(notes, "root(array->object)")
	case map[string]any:
		arr, ok := t["amounts"].([]any)
		if !ok {
			return nil, nil, fmt.Errorf("sanitize: missing amounts array")
		}
		items = arr
	default:
		return nil, nil, fmt.Errorf("sanitize: unexpected root type %T", root)
	}

	cleaned := make([]any, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			notes = append(notes, fmt.Sprintf("item[%d](not object)", i))
			continue
		}
		if cm, n := sanitizeItem(m); cm != nil {
			cleaned = append(cleaned, cm)
			notes = append(notes, n...)
		} else {
			notes = append(notes, append(n, fmt.Sprintf("item[%d](dropped)", i))...)
		}
	}

	out, err := json.Marshal(map[string]any{"amounts": cleaned})
	if err != nil {
		return nil, notes, fmt.Errorf("sanitize: encode: %w", err)
	}
	return out, notes, nil
}

func sanitizeItem(m map[string]any) (map[string]any, []string) {
	var notes []string

	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			// don't overwrite existing value if already present
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			notes = append(notes, from+"->"+to)
		}
	}
	renamed("category", "type")
	renamed("label", "type")
	renamed("amount", "value")
	renamed("token", "raw_token")
	renamed("source_token", "raw_token")

	// value: accept numbers and numeric strings
	switch v := m["value"].(type) {
	case float64:
		// fine as-is
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, append(notes, "value(unparseable)")
		}
		m["value"] = f
		notes = append(notes, "value(string->number)")
	default:
		return nil, append(notes, "value(missing)")
	}

	// raw_token: accept strings and bare numbers
	switch v := m["raw_token"].(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, append(notes, "raw_token(empty)")
		}
		m["raw_token"] = s
	case float64:
		m["raw_token"] = strconv.FormatFloat(v, 'f', -1, 64)
		notes = append(notes, "raw_token(number->string)")
	default:
		return nil, append(notes, "raw_token(missing)")
	}

	// type: canonicalize onto the enum
	label, _ := m["type"].(string)
	canon, known := constants.CanonicalizeAmountType(label)
	if !known {
		notes = append(notes, "type(unknown:"+label+")")
	}
	m["type"] = string(canon)

	// remove unknown keys (strict additionalProperties friendliness)
	for k := range m {
		switch k {
		case "type", "value", "raw_token":
		default:
			delete(m, k)
			notes = append(notes, k+"(unknown)")
		}
	}
	return m, notes
}

// stripCodeFences removes a leading ```json / trailing ``` wrapper.
func stripCodeFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	return []byte(s)
}
