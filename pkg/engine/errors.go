package engine

import (
	"errors"
	"fmt"
)

// InvalidFormatError reports that a structurally required container is missing.
type InvalidFormatError struct {
	Reason string
}

func (e *InvalidFormatError) Error() string {
	return "invalid format: " + e.Reason
}

// ParseError wraps any other failure while decoding or walking an input document.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsInvalidFormat reports whether err is, or wraps, an InvalidFormatError.
func IsInvalidFormat(err error) bool {
	var target *InvalidFormatError
	return errors.As(err, &target)
}
