package analysis

import (
	"context"
	"testing"
	"time"
)

func TestChunkPacerSpacesSuccessiveWaits(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	p := NewChunkPacer()
	ctx := context.Background()
	start := time.Now()

	if err := p.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("first Wait blocked for %v, want immediate", elapsed)
	}

	if err := p.Wait(ctx); err != nil {
		t.Fatalf("second Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
		t.Fatalf("second Wait returned after %v, want about a second of spacing", elapsed)
	}
}

func TestChunkPacerWaitHonorsCancellation(t *testing.T) {
	p := NewChunkPacer()
	ctx, cancel := context.WithCancel(context.Background())

	if err := p.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	cancel()
	if err := p.Wait(ctx); err == nil {
		t.Fatalf("expected error from cancelled Wait")
	}
}
