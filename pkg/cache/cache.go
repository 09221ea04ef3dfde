// Package cache stores fetched layouts and normalization results.
//
// Three backends implement [Cache]:
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP service
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Keys are built by a [Keyer] so every backend sees the same namespace:
//
//	keyer := cache.NewDefaultKeyer()
//	data, hit, err := c.Get(ctx, keyer.GistKey(id))
//
// Backends report hits, misses and writes to
// [observability.Cache], labelled with the key's namespace.
//
// [observability.Cache]: github.com/matzehuels/kle/pkg/observability.Cache
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a byte store with per-entry expiration.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A zero ttl in Set means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey is the key for a raw HTTP response body.
	HTTPKey(namespace, key string) string

	// GistKey is the key for a fetched gist.
	GistKey(id string) string

	// LayoutKey is the key for the result of an operation on a layout.
	LayoutKey(input []byte, opts LayoutKeyOpts) string
}

// LayoutKeyOpts are the parameters that change the result of a layout
// operation.
type LayoutKeyOpts struct {
	Operation string `json:"op"`
	Format    string `json:"format,omitempty"`
	Indent    string `json:"indent,omitempty"`
	Compact   bool   `json:"compact,omitempty"`
}

// DefaultKeyer builds unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// GistKey returns "gist:<id>".
func (DefaultKeyer) GistKey(id string) string {
	return "gist:" + id
}

// LayoutKey hashes the input together with opts.
func (DefaultKeyer) LayoutKey(input []byte, opts LayoutKeyOpts) string {
	return hashKey("layout", Hash(input), opts)
}

// keyType returns the namespace of a key for observability labels.
func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}
