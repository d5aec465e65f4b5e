package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyField    = errors.New("empty required field")
	ErrNoRecords     = errors.New("no wage records")
	ErrUnknownFormat = errors.New("unknown data format")
)

// LoadError reports a source file that is missing or malformed. It is fatal:
// the service never starts with a partially loaded table.
type LoadError struct {
	Source string
	Line   int // 1-based CSV line, 0 when the error is not tied to a row
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
