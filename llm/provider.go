package llm

import "context"

// Provider is the interface every model backend implements. Complete is
// blocking; one call corresponds to one completion request over the full
// message sequence.
type Provider interface {
	// Name returns the provider identifier (e.g. "openai", "ollama").
	Name() string

	// Complete sends a blocking request and returns the full response.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Closer is implemented by providers that hold resources.
type Closer interface {
	Close() error
}
