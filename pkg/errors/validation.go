package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePath validates a layout file path for safety.
// It rejects paths that could escape the working tree of a server or a
// gist checkout.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

// gistIDRegex matches GitHub gist IDs: 20 or 32 hex digits for current
// gists, plain numbers for very old ones.
var gistIDRegex = regexp.MustCompile(`^([0-9a-f]{20}|[0-9a-f]{32}|[0-9]{1,12})$`)

// ValidateGistID validates a bare gist ID.
func ValidateGistID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidGist, "gist ID cannot be empty")
	}
	if !gistIDRegex.MatchString(id) {
		return New(ErrCodeInvalidGist, "invalid gist ID: %q", id)
	}
	return nil
}
