package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "tags": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["name"]
}`

func decode(t *testing.T, doc string) interface{} {
	t.Helper()
	var out interface{}
	require.NoError(t, json.Unmarshal([]byte(doc), &out))
	return out
}

func hasFieldError(result *ValidationResult, field string) bool {
	for _, e := range result.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestNewValidator_InvalidSchema(t *testing.T) {
	_, err := NewValidator(`{"type": 12}`)
	assert.Error(t, err)

	assert.Panics(t, func() { MustNewValidator(`not json`) })
}

func TestValidator_Validate(t *testing.T) {
	v := MustNewValidator(testSchema)

	tests := []struct {
		name      string
		doc       string
		valid     bool
		errorFor  string
		errorCode string
	}{
		{name: "valid", doc: `{"name":"kb","tags":["a"]}`, valid: true},
		{name: "missing required", doc: `{"tags":[]}`, valid: false, errorFor: "(root)", errorCode: "required"},
		{name: "wrong type", doc: `{"name":42}`, valid: false, errorFor: "name", errorCode: "invalid_type"},
		{name: "nested item type", doc: `{"name":"x","tags":[1]}`, valid: false, errorFor: "tags.0", errorCode: "invalid_type"},
		{name: "not an object", doc: `[1,2]`, valid: false, errorFor: "(root)", errorCode: "invalid_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(decode(t, tt.doc))
			assert.Equal(t, tt.valid, result.Valid)
			if tt.valid {
				assert.Empty(t, result.Errors)
				return
			}
			require.NotEmpty(t, result.Errors)
			assert.True(t, hasFieldError(result, tt.errorFor), "errors: %v", result.GetErrorMessages())
			assert.Equal(t, tt.errorCode, result.Errors[0].Code)
		})
	}
}

func TestValidationResult_GetErrorMessages(t *testing.T) {
	result := &ValidationResult{
		Errors: []ValidationError{{Field: "input.text", Message: "Invalid type. Expected: string, given: integer"}},
	}
	assert.Equal(t, []string{"input.text: Invalid type. Expected: string, given: integer"}, result.GetErrorMessages())
	assert.False(t, hasFieldError(result, "input"))
}
