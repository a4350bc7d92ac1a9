package validation

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// iframeRe accepts a single self-contained iframe element and nothing else.
var iframeRe = regexp.MustCompile(`(?is)^\s*<iframe\b[^>]*>\s*</iframe>\s*$`)

var srcRe = regexp.MustCompile(`(?i)\bsrc\s*=\s*["']([^"']+)["']`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// SanitizeIframe validates an embedded floor-plan fragment: it must be a
// single iframe with an http(s) src. Returns the trimmed fragment, or
// ok=false when the input is anything else.
func SanitizeIframe(html string) (string, bool) {
	trimmed := strings.TrimSpace(html)
	if trimmed == "" {
		return "", true
	}
	if !iframeRe.MatchString(trimmed) {
		return "", false
	}
	m := srcRe.FindStringSubmatch(trimmed)
	if m == nil {
		return "", false
	}
	src := strings.ToLower(m[1])
	if !strings.HasPrefix(src, "https://") && !strings.HasPrefix(src, "http://") {
		return "", false
	}
	return trimmed, true
}
