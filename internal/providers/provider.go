// Package providers defines the assistant backend contract and its implementations.
// Supports a hosted cloud model and a locally running inference server.
package providers

import "context"

// Provider is the interface every assistant backend must implement.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// Assist sends a prompt to the backend and returns its text answer.
	// Call-time failures are reported as descriptive text, never as errors,
	// so an interactive session survives an unreachable backend.
	Assist(ctx context.Context, prompt string) string
}

// Options holds the raw key/value settings of one provider config section.
type Options map[string]string

// Sections maps a config section name (e.g. "cloud", "local_server") to its options.
type Sections map[string]Options

// Descriptor identifies the provider to resolve and carries the per-provider
// config sections it may draw from.
type Descriptor struct {
	Name     string
	Sections Sections
}
