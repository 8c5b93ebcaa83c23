package cache

import (
	"context"
	"time"

	"github.com/matzehuels/typeviz/pkg/observability"
)

// Instrumented reports hits, misses and writes of an inner cache to the
// registered [observability.CacheHooks] under keyType.
type Instrumented struct {
	Cache
	keyType string
}

// WithHooks wraps c so its traffic is reported as keyType.
func WithHooks(c Cache, keyType string) *Instrumented {
	return &Instrumented{Cache: c, keyType: keyType}
}

// Get forwards to the inner cache and reports a hit or miss.
func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnHit(ctx, c.keyType)
		} else {
			observability.Cache().OnMiss(ctx, c.keyType)
		}
	}
	return data, ok, err
}

// Set forwards to the inner cache and reports the write size.
func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnSet(ctx, c.keyType, len(data))
	return nil
}

// Clear forwards to the inner cache when it supports clearing.
func (c *Instrumented) Clear(ctx context.Context) error {
	if cl, ok := c.Cache.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return nil
}
