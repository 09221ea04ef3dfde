// Package integrations provides HTTP clients for remote layout sources.
//
// # Overview
//
// keyboard-layout-editor.com saves layouts as GitHub gists, so the only
// source today is the gist API:
//
//   - [gist]: fetch gists and their layout files
//
// # Client Pattern
//
// Source clients embed the shared [Client]:
//
//	client := gist.NewClient(c, token, 24*time.Hour)
//	g, err := client.Fetch(ctx, id, false)  // false = use cache
//
// [Client] handles:
//   - Default headers (API version, authentication)
//   - Response caching in any [cache.Cache], keyed by a per-source prefix
//   - Retries with backoff for network failures and 5xx responses
//   - Mapping 404 to [ErrNotFound] and rate limits to
//     [errors.RateLimitedError]
//   - HTTP events reported to [observability.HTTP]
//
// [gist]: github.com/matzehuels/kle/pkg/integrations/gist
// [cache.Cache]: github.com/matzehuels/kle/pkg/cache.Cache
// [errors.RateLimitedError]: github.com/matzehuels/kle/pkg/errors.RateLimitedError
// [observability.HTTP]: github.com/matzehuels/kle/pkg/observability.HTTP
package integrations
