package domain

import "fmt"

// ConfigurationError reports an invalid or contradictory source setup.
// It is fatal and surfaced before any document is loaded.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// ProviderError reports a failed embedding, LLM or document-source call
// after retries are exhausted.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ParseError reports model output that could not be parsed into the
// expected structure.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EmptyResultError reports that a source query matched zero documents.
type EmptyResultError struct {
	Query string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no documents loaded for %q: broaden the search query or pick other sources", e.Query)
}
