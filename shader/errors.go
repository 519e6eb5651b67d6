package shader

import "errors"

var (
	// ErrUnknownSnippet is returned when a #pragma inject names a
	// snippet neither the provider nor the global registry knows.
	ErrUnknownSnippet = errors.New("shader: unknown snippet")

	// ErrUnknownVariant is returned when a variant value targets a
	// define the source never declares.
	ErrUnknownVariant = errors.New("shader: unknown variant define")

	// ErrStoreClosed is returned for operations on a torn-down store.
	ErrStoreClosed = errors.New("shader: store closed")
)
