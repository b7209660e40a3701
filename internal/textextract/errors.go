package textextract

import (
	"errors"
	"fmt"
)

var (
	// ErrExtractionUnavailable is returned when a text extractor exists
	// but cannot run, e.g. the vision extractor without an API key.
	ErrExtractionUnavailable = errors.New("text extraction unavailable")

	// ErrUnsupportedFormat is returned when no extractor handles the
	// document's format.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmptyDocument is returned when a document yields no text.
	ErrEmptyDocument = errors.New("document contains no readable text")
)

// ExtractError wraps extraction failures with the failing operation.
type ExtractError struct {
	Op      string
	Err     error
	Details string
}

func (e *ExtractError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("textextract: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("textextract: %s failed: %v", e.Op, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

func (e *ExtractError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewExtractError creates a new ExtractError
func NewExtractError(op string, err error, details string) *ExtractError {
	return &ExtractError{Op: op, Err: err, Details: details}
}
