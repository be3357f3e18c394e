package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateName validates an identifier used in configuration: binding names,
// field names and Mongo database or collection names.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences or separators
//   - Maximum length of 128 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
		"$",    // Mongo operator prefix
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// redisKeyRegex matches the Redis keys gridview accepts: printable, no spaces.
var redisKeyRegex = regexp.MustCompile(`^[A-Za-z0-9:._{}\-]+$`)

// ValidateKey validates a Redis key holding a row list.
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "key cannot be empty")
	}
	if len(key) > 512 {
		return New(ErrCodeInvalidInput, "key too long (max 512 characters)")
	}
	if !redisKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidInput, "invalid key: %q", key)
	}
	return nil
}

// ValidatePath validates a configuration file path.
// It prevents control characters and traversal through parent directories.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
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

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateURL validates a connection URL for a remote row source.
// Only redis:// rediss:// mongodb:// and mongodb+srv:// schemes are accepted.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, scheme := range []string{"redis://", "rediss://", "mongodb://", "mongodb+srv://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use a redis or mongodb scheme")
}
