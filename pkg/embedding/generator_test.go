package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

type fakeProvider struct {
	probes   int64
	failInit bool
}

func (f *fakeProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "ping" {
		atomic.AddInt64(&f.probes, 1)
		if f.failInit {
			return nil, errors.New("model unreachable")
		}
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeProvider) Dimension() int { return 3 }

func TestGeneratorWarmsUpOnce(t *testing.T) {
	provider := &fakeProvider{}
	gen := NewGenerator(provider)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := gen.Generate(context.Background(), "hello"); err != nil {
				t.Errorf("Generate returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt64(&provider.probes); got != 1 {
		t.Errorf("warm-up probes = %d, want exactly 1", got)
	}
}

func TestGeneratorNotReady(t *testing.T) {
	gen := NewGenerator(&fakeProvider{failInit: true})

	_, err := gen.Generate(context.Background(), "hello")
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("Generate error = %v, want ErrNotReady", err)
	}

	// The failure is sticky: the model is loaded once per process or not at all.
	_, err = gen.Generate(context.Background(), "hello again")
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("second Generate error = %v, want ErrNotReady", err)
	}
}
