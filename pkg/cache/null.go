package cache

import (
	"context"
	"time"
)

// NullCache misses on every lookup and drops every write. It stands in when
// caching is disabled or the cache directory cannot be created.
type NullCache struct{}

func NewNullCache() *NullCache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Clear(context.Context) error                              { return nil }
func (*NullCache) Close() error                                             { return nil }

var (
	_ Cache   = (*NullCache)(nil)
	_ Clearer = (*NullCache)(nil)
)
