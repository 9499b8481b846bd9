package capture

import (
	"net/url"
	"strings"
)

// restrictedPrefixes are schemes the runtime cannot reliably reopen or
// manage. Matched case-insensitively against the trimmed URL.
var restrictedPrefixes = []string{
	"chrome://",
	"chrome-extension://",
	"chrome-untrusted://",
	"devtools://",
	"edge://",
	"brave://",
	"opera://",
	"vivaldi://",
	"about:",
	"moz-extension://",
	"view-source:",
}

// IsRestricted reports whether rawURL cannot be captured and restored.
// Pure and total: parse failures are restricted, never an error.
func IsRestricted(rawURL string) bool {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return true
	}

	lower := strings.ToLower(trimmed)
	for _, prefix := range restrictedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return true
	}
	switch parsed.Scheme {
	case "http", "https":
		return false
	}
	// file:, data:, blob:, javascript:, relative paths, search shortcuts.
	return true
}
