package transcript

import "fmt"

// LoadError represents an error reading or decoding a persisted file
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load error (%s): %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("load error (%s): %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// WriteError represents an error encoding or writing a persisted file
type WriteError struct {
	Path    string
	Message string
	Cause   error
}

func (e *WriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("write error (%s): %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("write error (%s): %s", e.Path, e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}
