package analysis

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer throttles successive AI requests within one analysis run.
type Pacer interface {
	Wait(ctx context.Context) error
}

// ChunkPacer spaces chunk requests one second apart to stay under the
// upstream API's rate limit. A call against a full bucket does not block,
// so callers wait before every request and the first one passes through.
type ChunkPacer struct {
	limiter *rate.Limiter
}

// NewChunkPacer builds the default one-request-per-second pacer.
func NewChunkPacer() *ChunkPacer {
	return &ChunkPacer{limiter: rate.NewLimiter(rate.Every(time.Second), 1)}
}

func (p *ChunkPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// NopPacer applies no pacing. Used in tests.
type NopPacer struct{}

func (NopPacer) Wait(ctx context.Context) error { return ctx.Err() }
