package errors

import (
	"strings"
	"testing"
)

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://mlm.example.com/api", false},
		{"http with port", "http://localhost:8000", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"no scheme", "example.com/api", true},
		{"no host", "https://", true},
		{"query", "https://example.com/api?x=1", true},
		{"fragment", "https://example.com/api#top", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBaseURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidConfig)
			}
		})
	}
}

func TestValidateEndpointPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"php endpoint", "/user/get_tree.php", false},
		{"nested", "/api/v1/franchise/tree", false},

		{"empty", "", true},
		{"relative", "user/tree.php", true},
		{"traversal", "/user/../admin.php", true},
		{"backslash", "/user\\tree.php", true},
		{"newline", "/user/tree.php\n", true},
		{"too long", "/" + strings.Repeat("a", 600), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEndpointPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEndpointPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode Code
	}{
		{"jwt-ish", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig", ""},
		{"empty", "", ErrCodeNotLoggedIn},
		{"header injection", "abc\r\nX-Evil: 1", ErrCodeInvalidInput},
		{"space", "abc def", ErrCodeInvalidInput},
		{"too long", strings.Repeat("a", 5000), ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateToken(tt.input)
			if got := GetCode(err); got != tt.wantCode {
				t.Errorf("ValidateToken() code = %q, want %q (err=%v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	if err := ValidateOutputPath(""); err != nil {
		t.Errorf("empty path should be allowed: %v", err)
	}
	if err := ValidateOutputPath("out/tree"); err != nil {
		t.Errorf("relative path should be allowed: %v", err)
	}
	if err := ValidateOutputPath("out\x00tree"); err == nil {
		t.Error("null byte should be rejected")
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidStyle,
		ErrCodeInvalidKind, ErrCodeInvalidDepth, ErrCodeInvalidGeometry,
		ErrCodeInvalidConfig, ErrCodeInvalidPath,
		ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeSessionNotFound,
		ErrCodeNetwork, ErrCodeTimeout, ErrCodeBackendRejected, ErrCodeMalformed,
		ErrCodeNotLoggedIn, ErrCodeUnauthorized, ErrCodeSessionExpired, ErrCodeCaptcha,
		ErrCodeInternal, ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("duplicate error code: %s", c)
		}
		seen[c] = true
	}
}
