package extraction

import (
	"errors"
	"fmt"
)

// ErrMalformedExtraction marks model output that could not be parsed into a
// category mapping. Callers skip the merge for such records but keep them
// in the audit log.
var ErrMalformedExtraction = errors.New("malformed extraction")

// APICallError represents a failed call to the completion service
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents model output that failed structural validation
type ParseError struct {
	Message string
	Raw     string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrMalformedExtraction) match any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedExtraction
}
