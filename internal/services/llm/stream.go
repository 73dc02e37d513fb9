package llm

import (
	"context"
	"time"

	"github.com/ternarybob/docchat/internal/interfaces"
	"golang.org/x/time/rate"
)

// sendChunk delivers chunk unless ctx is cancelled first.
// Returns false when the consumer has gone away.
func sendChunk(ctx context.Context, out chan<- interfaces.StreamChunk, chunk interfaces.StreamChunk) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

// newLimiter builds a limiter allowing one request per interval.
// An empty interval means unlimited.
func newLimiter(interval string) (*rate.Limiter, error) {
	if interval == "" {
		return rate.NewLimiter(rate.Inf, 1), nil
	}
	d, err := time.ParseDuration(interval)
	if err != nil {
		return nil, err
	}
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1), nil
	}
	return rate.NewLimiter(rate.Every(d), 1), nil
}
