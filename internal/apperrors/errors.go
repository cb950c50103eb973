package apperrors

import (
	"errors"
	"fmt"
)

// ErrEmptyCatalog is the load error returned when a provider main page yields
// no shelf with at least one entry.
var ErrEmptyCatalog = errors.New("catalog is empty: no shelf could be populated")

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// NewProviderNotFoundError creates a specific error for an unknown provider id.
func NewProviderNotFoundError(id string) *ErrNotFound {
	return &ErrNotFound{
		Resource: "provider",
		ID:       id,
	}
}

// ParseError is returned when a required element is missing from a fetched page.
type ParseError struct {
	Provider string
	URL      string
	Element  string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: required element %q missing on %s", e.Provider, e.Element, e.URL)
}

// Is allows for error checking with errors.Is().
func (e *ParseError) Is(target error) bool {
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError.
func NewParseError(provider, url, element string) *ParseError {
	return &ParseError{Provider: provider, URL: url, Element: element}
}

// UpstreamError is returned when a site answers with a non-200 status.
type UpstreamError struct {
	URL        string
	StatusCode int
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// Is allows for error checking with errors.Is().
func (e *UpstreamError) Is(target error) bool {
	_, ok := target.(*UpstreamError)
	return ok
}

// Retryable reports whether the status indicates a transient server failure.
func (e *UpstreamError) Retryable() bool {
	return e.StatusCode >= 500
}
