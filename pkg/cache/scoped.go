package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis instance.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "kle:staging:")
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

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// GistKey generates a prefixed key for gist caching.
func (k *ScopedKeyer) GistKey(id string) string {
	return k.prefix + k.inner.GistKey(id)
}

// LayoutKey generates a prefixed key for layout results.
func (k *ScopedKeyer) LayoutKey(input []byte, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(input, opts)
}
