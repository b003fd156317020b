package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// ValidateBaseURL validates the backend base URL from config or flags.
// It must be an absolute http(s) URL without query or fragment; endpoint
// paths are appended to it verbatim.
func ValidateBaseURL(raw string) error {
	if raw == "" {
		return New(ErrCodeInvalidConfig, "backend base URL cannot be empty")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return New(ErrCodeInvalidConfig, "backend base URL must use http or https scheme")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidConfig, err, "parse backend base URL")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidConfig, "backend base URL has no host")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return New(ErrCodeInvalidConfig, "backend base URL cannot carry a query or fragment")
	}
	return nil
}

// ValidateEndpointPath validates an endpoint path such as "/user/tree.php".
//
// Rules:
//   - Must start with "/"
//   - Maximum length of 500 characters
//   - No control characters, backslashes or ".." segments
func ValidateEndpointPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "endpoint path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "endpoint path too long (max %d characters)", maxPathLength)
	}

	if !strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "endpoint path must start with /")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "endpoint path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "endpoint path cannot contain ..")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "endpoint path cannot contain backslashes")
	}
	return nil
}

// ValidateToken checks that a bearer token can be sent in a header.
// Header injection (CR/LF) and whitespace are rejected.
func ValidateToken(token string) error {
	if token == "" {
		return New(ErrCodeNotLoggedIn, "token cannot be empty")
	}
	if len(token) > 4096 {
		return New(ErrCodeInvalidInput, "token too long (max 4096 characters)")
	}
	for _, r := range token {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "token contains whitespace or control characters")
		}
	}
	return nil
}

// ValidateOutputPath validates a user supplied output base path.
func ValidateOutputPath(path string) error {
	if path == "" {
		return nil
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}
	return nil
}
