package domain

import "errors"

// Catalog fetch and generation error types

var (
	// ErrFetchFailed indicates a network or protocol failure talking to the
	// external catalog. Never cached; the next identical request retries.
	ErrFetchFailed = errors.New("catalog fetch failed")

	// ErrFetchTimeout indicates the catalog fetch exceeded its deadline
	ErrFetchTimeout = errors.New("catalog fetch timeout")

	// ErrParseFailed indicates the catalog returned markup that could not be
	// parsed into a lookup result
	ErrParseFailed = errors.New("catalog response parse failed")

	// ErrGenerationFailed indicates the language-model capability failed.
	// Surfaced to users as a generic apology, never as a hard error.
	ErrGenerationFailed = errors.New("language model generation failed")
)
