package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// databaseNameRegex matches database names TypeDB accepts.
var databaseNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ValidateDatabaseName validates a TypeDB database name before it is
// interpolated into a request path.
//
// Rules:
//   - not empty, at most 128 characters
//   - starts with a letter or underscore
//   - only letters, digits, '_' and '-'
func ValidateDatabaseName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "database name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "database name too long (max 128 characters)")
	}

	if !databaseNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid database name: %q", name)
	}

	return nil
}

// ValidatePath validates a user supplied output or input file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateURL checks that rawURL is an absolute http or https URL with a
// host, such as a TypeDB HTTP endpoint.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme, got %q", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL %q has no host", rawURL)
	}
	return nil
}

// ValidateQuery rejects empty or oversized TypeQL queries.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return New(ErrCodeInvalidInput, "query cannot be empty")
	}

	const maxQueryLength = 1 << 20
	if len(query) > maxQueryLength {
		return New(ErrCodeInvalidInput, "query too long (max %d bytes)", maxQueryLength)
	}

	if strings.ContainsRune(query, '\x00') {
		return New(ErrCodeInvalidInput, "query contains null bytes")
	}

	return nil
}
