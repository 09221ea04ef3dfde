package gist

import (
	"net/url"
	"strings"

	"github.com/matzehuels/kle/pkg/errors"
)

// ParseGistID extracts a gist ID from user input. Accepted forms:
//
//	8f2b7c3d9e1a4b5c6d7e8f9a0b1c2d3e
//	https://gist.github.com/user/8f2b7c3d9e1a4b5c6d7e8f9a0b1c2d3e
//	https://gist.github.com/8f2b7c3d9e1a4b5c6d7e8f9a0b1c2d3e.git
//	http://www.keyboard-layout-editor.com/#/gists/8f2b7c3d9e1a4b5c6d7e8f9a0b1c2d3e
//	gists/8f2b7c3d9e1a4b5c6d7e8f9a0b1c2d3e
func ParseGistID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New(errors.ErrCodeInvalidGist, "gist ID cannot be empty")
	}

	candidate := s
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		// keyboard-layout-editor keeps its route in the fragment.
		candidate = u.Path
		if u.Fragment != "" {
			candidate = u.Fragment
		}
	}

	candidate = strings.Trim(candidate, "/")
	if i := strings.LastIndexByte(candidate, '/'); i >= 0 {
		candidate = candidate[i+1:]
	}
	candidate = strings.TrimSuffix(candidate, ".git")

	if err := errors.ValidateGistID(candidate); err != nil {
		return "", errors.New(errors.ErrCodeInvalidGist, "no gist ID in %q", s)
	}
	return candidate, nil
}
