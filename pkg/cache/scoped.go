package cache

// ScopedKeyer wraps a Keyer with a prefix. The TypeDB client scopes keys by
// username so users with different permissions never share responses.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "user:admin:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// QueryKey generates a prefixed query key.
func (k *ScopedKeyer) QueryKey(address, database, query string) string {
	return k.prefix + k.inner.QueryKey(address, database, query)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(inputHash, format string) string {
	return k.prefix + k.inner.ArtifactKey(inputHash, format)
}

// GenerationKey is not prefixed: a write by one user invalidates the
// entries of every user.
func (k *ScopedKeyer) GenerationKey(address, database string) string {
	return k.inner.GenerationKey(address, database)
}
