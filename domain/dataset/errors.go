package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLoad matches every *LoadError via errors.Is
	ErrLoad = errors.New("dataset load failed")
	// ErrInvalidSelection matches every *InvalidSelectionError via errors.Is
	ErrInvalidSelection = errors.New("invalid selection")
)

// LoadError reports malformed or structurally invalid tabular input
type LoadError struct {
	Source string
	Reason string
	Err    error
}

// NewLoadError builds a LoadError; err may be nil
func NewLoadError(source, reason string, err error) *LoadError {
	return &LoadError{Source: source, Reason: reason, Err: err}
}

func (e *LoadError) Error() string {
	msg := "cannot load " + e.Source + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// InvalidSelectionError reports a metric that is absent or not numeric
type InvalidSelectionError struct {
	Metric    string
	Available []string
	Reason    string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("metric %q %s (available: %s)", e.Metric, e.Reason, strings.Join(e.Available, ", "))
}

func (e *InvalidSelectionError) Is(target error) bool {
	return target == ErrInvalidSelection
}
