package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotReady is returned by Generate when the underlying model never became
// reachable.
var ErrNotReady = errors.New("embedding: model not ready")

// Generator wraps a Provider and guarantees the expensive model warm-up runs
// exactly once per process. Concurrent callers before initialization
// completes all wait on the same in-flight warm-up instead of triggering
// duplicate ones.
type Generator struct {
	provider Provider

	initOnce sync.Once
	initErr  error
}

func NewGenerator(provider Provider) *Generator {
	return &Generator{provider: provider}
}

// warmUp probes the provider with a short input. Ollama loads the model into
// memory on first use, so this both verifies reachability and front-loads the
// expensive part.
func (g *Generator) warmUp(ctx context.Context) {
	g.initOnce.Do(func() {
		if _, err := g.provider.Generate(ctx, "ping"); err != nil {
			g.initErr = fmt.Errorf("%w: %v", ErrNotReady, err)
		}
	})
}

// Init eagerly warms the model. Safe to call from multiple startup paths.
func (g *Generator) Init(ctx context.Context) error {
	g.warmUp(ctx)
	return g.initErr
}

// Generate returns the fixed-dimensionality vector for text, or ErrNotReady
// if the model could not be loaded.
func (g *Generator) Generate(ctx context.Context, text string) ([]float32, error) {
	g.warmUp(ctx)
	if g.initErr != nil {
		return nil, g.initErr
	}
	return g.provider.Generate(ctx, text)
}

func (g *Generator) Dimension() int {
	return g.provider.Dimension()
}
