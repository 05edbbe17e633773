// Package llm defines the capability interfaces for generative text and
// embedding backends. The generative service is treated as an unreliable,
// schema-free text oracle: implementations return whatever the remote model
// produced and callers are responsible for validating or repairing it.
package llm

import "context"

// Provider is the interface for any generative text backend.
type Provider interface {
	// Generate sends a prompt and returns the raw model output. The output
	// carries no schema guarantees of any kind.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder turns text into a vector representation. Implementations must be
// stable: the same input yields the same vector across calls.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
