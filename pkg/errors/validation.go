package errors

import (
	"net/url"
	"slices"
	"strings"
	"unicode"
)

// ValidatePath validates a local file path supplied for input or output.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not end with a path separator (a directory is not a file)
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "path must name a file, not a directory: %q", path)
	}

	return nil
}

// ValidateURI validates a backend connection URI (Redis, MongoDB, Neo4j).
// The scheme must be one of schemes and a host must be present.
func ValidateURI(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "URI cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidConfig, err, "invalid URI")
	}

	if !slices.Contains(schemes, u.Scheme) {
		return New(ErrCodeInvalidConfig, "URI scheme %q not supported (want one of %s)", u.Scheme, strings.Join(schemes, ", "))
	}

	if u.Host == "" {
		return New(ErrCodeInvalidConfig, "URI must include a host")
	}

	return nil
}

// ValidateFormat checks that format is one of the allowed values.
func ValidateFormat(format string, allowed ...string) error {
	if !slices.Contains(allowed, format) {
		return New(ErrCodeInvalidFormat, "invalid format: %s (must be one of %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}
