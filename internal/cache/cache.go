package cache

import (
	"context"
	"time"
)

// ComputeFunc produces the value for a cache tag on a miss
type ComputeFunc func(ctx context.Context) ([]byte, error)

// TagCache is a named-tag read-through cache. GetOrCompute returns the
// cached value for a tag, computing and storing it on a miss. Invalidate
// drops a tag so the next read recomputes; invalidating an absent tag is
// a no-op.
type TagCache interface {
	GetOrCompute(ctx context.Context, tag string, ttl time.Duration, compute ComputeFunc) ([]byte, error)
	Invalidate(ctx context.Context, tag string) error
}
