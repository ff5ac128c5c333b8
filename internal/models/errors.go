package models

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput marks requests whose text payload is empty after trimming.
	ErrEmptyInput = errors.New("input is empty")

	// ErrNotConfigured is returned when a required API key is absent.
	ErrNotConfigured = errors.New("api key not configured")

	// ErrNoContent is returned when a provider call succeeds but carries no
	// usable text. Callers must treat this as a failure, never as "".
	ErrNoContent = errors.New("provider returned no content")

	// ErrNoText marks extractions that produced only whitespace.
	ErrNoText = errors.New("no text found")
)

// UnsupportedTypeError rejects a file before any extraction work begins.
type UnsupportedTypeError struct {
	Filename string
	Allowed  string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %q (allowed: %s)", e.Filename, e.Allowed)
}

// ProviderError carries the upstream status and body for diagnostics.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s error: status=%d, body=%s", e.Provider, e.Status, e.Body)
	}
	return fmt.Sprintf("%s error: status=%d", e.Provider, e.Status)
}
