// Package gist fetches keyboard layouts stored as GitHub gists.
//
// keyboard-layout-editor.com saves each layout as a gist containing a file
// named "<something>.kbd.json". [Client.Fetch] retrieves a gist with its file
// contents and [Gist.LayoutFiles] picks out the files that hold layouts:
//
//	client := gist.NewClient(c, os.Getenv("KLE_GITHUB_TOKEN"), 24*time.Hour)
//	g, err := client.Fetch(ctx, "8f2b7c3d9e1a4b5c6d7e8f9a0b1c2d3e", false)
//	for _, f := range g.LayoutFiles() {
//	    kbd, err := io.Read(ctx, strings.NewReader(f.Content), io.FormatJSON)
//	    ...
//	}
package gist

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/kle/pkg/cache"
	"github.com/matzehuels/kle/pkg/errors"
	"github.com/matzehuels/kle/pkg/integrations"
)

// DefaultBaseURL is the GitHub REST API root.
const DefaultBaseURL = "https://api.github.com"

// LayoutSuffix is the file name suffix keyboard-layout-editor gives layouts.
const LayoutSuffix = ".kbd.json"

var gistKeys = cache.NewDefaultKeyer()

// File is one file of a gist.
type File struct {
	Filename  string `json:"filename"`
	Language  string `json:"language,omitempty"`
	RawURL    string `json:"raw_url"`
	Size      int    `json:"size"`
	Truncated bool   `json:"truncated,omitempty"`
	Content   string `json:"content"`
}

// Owner is the account that created a gist.
type Owner struct {
	Login string `json:"login"`
}

// Gist is a fetched gist with its files.
type Gist struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	HTMLURL     string          `json:"html_url"`
	Owner       *Owner          `json:"owner,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Files       map[string]File `json:"files"`
}

// LayoutFiles returns the files holding layouts, sorted by name. Files ending
// in .kbd.json are preferred; when there are none, any .json file is
// returned.
func (g *Gist) LayoutFiles() []File {
	var layouts, jsons []File
	for _, f := range g.Files {
		name := strings.ToLower(f.Filename)
		switch {
		case strings.HasSuffix(name, LayoutSuffix):
			layouts = append(layouts, f)
		case strings.HasSuffix(name, ".json"):
			jsons = append(jsons, f)
		}
	}
	if len(layouts) == 0 {
		layouts = jsons
	}
	slices.SortFunc(layouts, func(a, b File) int { return strings.Compare(a.Filename, b.Filename) })
	return layouts
}

// File returns the named file.
func (g *Gist) File(name string) (File, bool) {
	f, ok := g.Files[name]
	return f, ok
}

// Client reads gists from the GitHub API.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a gist client caching responses in c for ttl.
// Pass an empty token for unauthenticated requests (lower rate limits).
func NewClient(c cache.Cache, token string, ttl time.Duration) *Client {
	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(c, "http:github:", ttl, headers),
		baseURL: DefaultBaseURL,
	}
}

// SetBaseURL points the client at another API root, such as a GitHub
// Enterprise instance or a test server.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

// Fetch retrieves a gist and the full content of its files. The id may be
// anything [ParseGistID] accepts. If refresh is true, cached data is bypassed.
func (c *Client) Fetch(ctx context.Context, id string, refresh bool) (*Gist, error) {
	id, err := ParseGistID(id)
	if err != nil {
		return nil, err
	}

	var g Gist
	err = c.Cached(ctx, gistKeys.GistKey(id), refresh, &g, func() error {
		return c.fetch(ctx, id, &g)
	})
	if err != nil {
		return nil, classify(err, id)
	}
	return &g, nil
}

func (c *Client) fetch(ctx context.Context, id string, g *Gist) error {
	if err := c.Get(ctx, fmt.Sprintf("%s/gists/%s", c.baseURL, id), g); err != nil {
		return err
	}
	// The API inlines at most 1 MB per file.
	for name, f := range g.Files {
		if !f.Truncated || f.RawURL == "" {
			continue
		}
		content, err := c.GetText(ctx, f.RawURL)
		if err != nil {
			return fmt.Errorf("file %s: %w", name, err)
		}
		f.Content, f.Truncated = content, false
		g.Files[name] = f
	}
	return nil
}

// classify attaches an error code to a fetch failure.
func classify(err error, id string) error {
	var rl *errors.RateLimitedError
	switch {
	case stderrors.Is(err, integrations.ErrNotFound):
		return errors.Wrap(errors.ErrCodeNotFound, err, "gist %s", id)
	case stderrors.As(err, &rl):
		return errors.Wrap(errors.ErrCodeRateLimited, err, "gist %s", id)
	case stderrors.Is(err, integrations.ErrNetwork):
		return errors.Wrap(errors.ErrCodeNetwork, err, "gist %s", id)
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "gist %s", id)
}
