package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound         = errors.New("resource not found")
	ErrSessionNotFound  = fmt.Errorf("%w: session", ErrNotFound)
	ErrDatasetNotFound  = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrCatalogDisabled  = errors.New("dataset catalog is not configured")
	ErrNoDataset        = errors.New("no dataset loaded")
	ErrUnsupportedInput = errors.New("unsupported input format")
)

// NewNotFoundError wraps ErrNotFound with the resource and id
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// IsNotFoundError reports whether err is any flavour of ErrNotFound
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
