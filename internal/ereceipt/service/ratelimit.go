package service

import (
	"context"
	"time"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/store"
)

// RateLimitService is the durable fixed-window limiter. Unlike the
// in-memory per-IP middleware it survives restarts and is shared across
// instances pointing at the same database.
type RateLimitService struct {
	Store store.RateLimits
}

// WindowEnd buckets now to the ceiling of the window. Every hit inside
// the same window computes the same end instant, so concurrent callers
// converge on one counter row.
func WindowEnd(now time.Time, window time.Duration) time.Time {
	return now.UTC().Truncate(window).Add(window)
}

// Hit records one event against key and reports whether it is still
// within limit. Counting continues past the limit; stale windows are
// simply never read again.
func (s *RateLimitService) Hit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := s.Store.Hit(ctx, key, WindowEnd(time.Now(), window))
	if err != nil {
		return false, err
	}
	return count <= limit, nil
}
