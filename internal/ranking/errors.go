package ranking

import (
	"errors"
	"fmt"
)

// ErrEmptyTarget is returned when the rerank target is blank.
var ErrEmptyTarget = errors.New("rerank target is empty")

// EmbeddingError represents a failed or unusable embedding service response.
// It aborts the whole rerank; no partial ordering is returned.
type EmbeddingError struct {
	Message  string
	Category string // empty for the target embedding
	Cause    error
}

func (e *EmbeddingError) Error() string {
	where := "target"
	if e.Category != "" {
		where = fmt.Sprintf("category %q", e.Category)
	}
	if e.Cause != nil {
		return fmt.Sprintf("embedding error (%s): %s: %v", where, e.Message, e.Cause)
	}
	return fmt.Sprintf("embedding error (%s): %s", where, e.Message)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Cause
}
