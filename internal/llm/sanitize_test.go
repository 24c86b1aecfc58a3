package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAmounts(t *testing.T, doc []byte) []ClassifiedAmount {
	t.Helper()
	var out struct {
		Amounts []ClassifiedAmount `json:"amounts"`
	}
	require.NoError(t, json.Unmarshal(doc, &out))
	return out.Amounts
}

func TestSanitizeStripsCodeFences(t *testing.T) {
	raw := []byte("```json\n{\"amounts\":[{\"type\":\"tax\",\"value\":50,\"raw_token\":\"50\"}]}\n```")
	cleaned, _, err := SanitizeClassification(raw)
	require.NoError(t, err)

	amounts := decodeAmounts(t, cleaned)
	require.Len(t, amounts, 1)
	assert.Equal(t, "tax", amounts[0].Type)
}

func TestSanitizeWrapsBareArray(t *testing.T) {
	raw := []byte(`[{"type":"paid","value":1000,"raw_token":"1000"}]`)
	cleaned, notes, err := SanitizeClassification(raw)
	require.NoError(t, err)
	assert.Contains(t, notes, "root(array->object)")

	amounts := decodeAmounts(t, cleaned)
	require.Len(t, amounts, 1)
	assert.Equal(t, "paid", amounts[0].Type)
}

func TestSanitizeCoercesAndRenames(t *testing.T) {
	raw := []byte(`{"amounts":[
		{"category":"Grand Total","amount":"1200","token":"l200","note":"x"}
	]}`)
	cleaned, notes, err := SanitizeClassification(raw)
	require.NoError(t, err)

	amounts := decodeAmounts(t, cleaned)
	require.Len(t, amounts, 1)
	assert.Equal(t, "total_bill", amounts[0].Type)
	assert.Equal(t, "1200", amounts[0].Value.String())
	assert.Equal(t, "l200", amounts[0].RawToken)
	assert.Contains(t, notes, "category->type")
	assert.Contains(t, notes, "note(unknown)")
}

func TestSanitizeDropsUnusableItems(t *testing.T) {
	raw := []byte(`{"amounts":[
		{"type":"tax","value":"not a number","raw_token":"50"},
		{"type":"due","value":200},
		{"type":"paid","value":1000,"raw_token":"1000"}
	]}`)
	cleaned, _, err := SanitizeClassification(raw)
	require.NoError(t, err)

	amounts := decodeAmounts(t, cleaned)
	require.Len(t, amounts, 1)
	assert.Equal(t, "paid", amounts[0].Type)
}

func TestSanitizeUnknownTypeFallsBack(t *testing.T) {
	raw := []byte(`{"amounts":[{"type":"mystery","value":10.5,"raw_token":"10.5"}]}`)
	cleaned, notes, err := SanitizeClassification(raw)
	require.NoError(t, err)

	amounts := decodeAmounts(t, cleaned)
	require.Len(t, amounts, 1)
	assert.Equal(t, "other_fee", amounts[0].Type)
	assert.Contains(t, notes, "type(unknown:mystery)")
}

func TestSanitizeRejectsNonJSON(t *testing.T) {
	_, _, err := SanitizeClassification([]byte("sorry, I cannot help with that"))
	assert.Error(t, err)
}

func TestValidateAgainstClassificationSchema(t *testing.T) {
	schema := BuildClassificationJSONSchema([]string{"total_bill", "paid", "due", "tax", "discount", "item_cost", "other_fee"})

	valid := []byte(`{"amounts":[{"type":"due","value":200,"raw_token":"200"}]}`)
	assert.NoError(t, ValidateJSONAgainstSchema(schema, valid))

	badEnum := []byte(`{"amounts":[{"type":"balance","value":200,"raw_token":"200"}]}`)
	assert.Error(t, ValidateJSONAgainstSchema(schema, badEnum))

	missingKey := []byte(`{"amounts":[{"type":"due","value":200}]}`)
	assert.Error(t, ValidateJSONAgainstSchema(schema, missingKey))

	extraKey := []byte(`{"amounts":[{"type":"due","value":200,"raw_token":"200","why":"label"}]}`)
	assert.Error(t, ValidateJSONAgainstSchema(schema, extraKey))

	stringValue := []byte(`{"amounts":[{"type":"due","value":"200","raw_token":"200"}]}`)
	assert.Error(t, ValidateJSONAgainstSchema(schema, stringValue))
}
