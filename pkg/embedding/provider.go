package embedding

import "context"

// Provider defines the interface for generating text embeddings
type Provider interface {
	// Generate converts text into a fixed-length, unit-normalized vector.
	Generate(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the vector size the provider's model produces.
	Dimension() int
}
