package refgen_test

import (
	"sync"
	"testing"

	"github.com/iho/isobridge/internal/adapter/refgen"
	"github.com/iho/isobridge/internal/domain"
)

func TestUETRGenerator_Format(t *testing.T) {
	gen := refgen.NewUETRGenerator()

	ref, err := gen.Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !domain.ValidUETR(ref.UETR) {
		t.Errorf("generated UETR not canonical: %q", ref.UETR)
	}

	if ref.AssignedAt.IsZero() {
		t.Error("assignment time not set")
	}
}

func TestUETRGenerator_MonotonicSequence(t *testing.T) {
	gen := refgen.NewUETRGenerator()

	var prev uint64
	for i := 0; i < 100; i++ {
		ref, err := gen.Generate()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if ref.Sequence <= prev {
			t.Fatalf("sequence not monotonic: %d after %d", ref.Sequence, prev)
		}
		prev = ref.Sequence
	}
}

func TestUETRGenerator_ConcurrentUniqueness(t *testing.T) {
	gen := refgen.NewUETRGenerator()

	const workers = 8
	const perWorker = 50

	var (
		mu   sync.Mutex
		seen = make(map[string]bool, workers*perWorker)
		seqs = make(map[uint64]bool, workers*perWorker)
		wg   sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ref, err := gen.Generate()
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}

				mu.Lock()
				if seen[ref.UETR] {
					t.Errorf("duplicate UETR %q", ref.UETR)
				}
				if seqs[ref.Sequence] {
					t.Errorf("duplicate sequence %d", ref.Sequence)
				}
				seen[ref.UETR] = true
				seqs[ref.Sequence] = true
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
}
