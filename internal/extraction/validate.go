package extraction

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/persona-builder/internal/llm"
	"github.com/jonathan/persona-builder/internal/schemas"
	"github.com/jonathan/persona-builder/internal/types"
)

// Validate parses raw model output into an Extraction. The check is purely
// structural: a JSON object whose values are string lists, strings or null.
// Category names are not checked against the fixed set. Any failure is a
// *ParseError, which matches ErrMalformedExtraction.
func Validate(raw string) (types.Extraction, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if strings.TrimSpace(cleaned) == "" {
		return nil, &ParseError{Message: "empty response", Raw: raw}
	}

	if err := schemas.Validate(schemas.Extraction, []byte(cleaned)); err != nil {
		return nil, &ParseError{
			Message: "response is not a category mapping",
			Raw:     raw,
			Cause:   err,
		}
	}

	var extraction types.Extraction
	if err := json.Unmarshal([]byte(cleaned), &extraction); err != nil {
		return nil, &ParseError{
			Message: "failed to decode category mapping",
			Raw:     raw,
			Cause:   err,
		}
	}
	return extraction, nil
}
