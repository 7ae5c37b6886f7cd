// internal/gateway/knowledge-query/validation.go
package knowledgequery

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "bedrock-query-gateway/internal/common/errors"
	"bedrock-query-gateway/internal/common/validation"
)

// payloadSchema accepts any object. A null input or text counts as absent,
// a value of any other type is malformed.
const payloadSchema = `{
  "type": "object",
  "properties": {
    "input": {
      "type": ["object", "null"],
      "properties": {
        "text": {"type": ["string", "null"]}
      }
    }
  }
}`

var payloadValidator = validation.MustNewValidator(payloadSchema)

// extractQueryText decodes a request body and returns the query text it carries.
func extractQueryText(body []byte) (string, error) {
	var document interface{}
	if err := json.Unmarshal(body, &document); err != nil {
		return "", apperrors.NewInvalidInputError(err)
	}

	result := payloadValidator.Validate(document)
	if !result.Valid {
		return "", apperrors.NewInvalidInputError(
			fmt.Errorf("payload does not match schema: %s", strings.Join(result.GetErrorMessages(), "; ")),
		)
	}

	payload := document.(map[string]interface{})
	input, _ := payload["input"].(map[string]interface{})
	text, _ := input["text"].(string)

	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewMissingQueryTextError()
	}
	return text, nil
}
