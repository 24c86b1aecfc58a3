package llm

// BuildClassificationJSONSchema returns a JSON-Schema (draft 2020-12 subset) as
// a generic map. We pass this to the model as a structured output constraint
// and also use it locally to validate what comes back.
//
// The root is an object with a single "amounts" array; chat/completions JSON
// mode requires an object at the top level.
func BuildClassificationJSONSchema(allowedTypes []string) map[string]any {
	typeProp := map[string]any{"type": "string", "minLength": 1}
	if len(allowedTypes) > 0 {
		typeProp = map[string]any{
			"type": "string",
			"enum": allowedTypes,
		}
	}

	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"type":      typeProp,
			"value":     map[string]any{"type": "number"},
			"raw_token": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"type", "value", "raw_token"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"amounts": map[string]any{
				"type":  "array",
				"items": item,
			},
		},
		"required": []string{"amounts"},
	}
}
