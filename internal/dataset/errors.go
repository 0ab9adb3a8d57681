package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput indicates the input held no header row.
	ErrEmptyInput = errors.New("no columns to parse from file")
	// ErrExpired indicates a previously uploaded dataset is no longer cached.
	ErrExpired = errors.New("uploaded dataset expired, please upload it again")
	// ErrNoSource indicates there was neither an upload nor a default file.
	ErrNoSource = errors.New("no dataset source configured")
)

// LoadError describes why a source could not be turned into a Dataset.
// Line is 1-based and zero when the failure is not tied to a line.
type LoadError struct {
	Source string
	Line   int
	Err    error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "load failed"
	}
	switch {
	case e.Source != "" && e.Line > 0:
		return fmt.Sprintf("%s: line %d: %v", e.Source, e.Line, e.Err)
	case e.Source != "":
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *LoadError) Unwrap() error { return e.Err }
