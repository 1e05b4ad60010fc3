package server

import (
	"regexp"
	"strings"
)

// SanitizeLogLines performs minimal redaction on log lines for safe exposure
func SanitizeLogLines(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}
	out := make([]string, len(lines))
	credentialPatterns := []struct {
		regex       *regexp.Regexp
		replacement string
	}{
		{regex: regexp.MustCompile(`(?i)password=[^\s]+`), replacement: "password=[redacted]"},
		{regex: regexp.MustCompile(`(?i)api_key=[^\s]+`), replacement: "api_key=[redacted]"},
		{regex: regexp.MustCompile(`(?i)secret=[^\s]+`), replacement: "secret=[redacted]"},
		{regex: regexp.MustCompile(`(?i)token=[^\s]+`), replacement: "token=[redacted]"},
		{regex: regexp.MustCompile(`(?i)authorization:\s*bearer\s+[a-z0-9\-._~+/=]+`), replacement: "authorization: Bearer [redacted]"},
		{regex: regexp.MustCompile(`(?i)https?://[^:@\s]+:[^@\s]+@`), replacement: "http://[redacted]:[redacted]@"},
		{regex: regexp.MustCompile(`(?i)email=\S+`), replacement: "email=[redacted]"},
		{regex: regexp.MustCompile(`(?i)phone=\S+`), replacement: "phone=[redacted]"},
		// Conversation logs can carry payment and identity details
		// collected by workflow tools.
		{regex: regexp.MustCompile(`(?i)card_number[:=]\s*[^\s]+`), replacement: "card_number=[redacted]"},
		{regex: regexp.MustCompile(`(?i)cvv[:=]\s*\d+`), replacement: "cvv=[redacted]"},
		{regex: regexp.MustCompile(`(?i)passport_number[:=]\s*[^\s]+`), replacement: "passport_number=[redacted]"},
		{regex: regexp.MustCompile(`\b\d{13,19}\b`), replacement: "[redacted number]"},
		{regex: regexp.MustCompile(`(?i)(password|secret|token)\s*"[^"]+"`), replacement: "$1\"[redacted]\""},
		{regex: regexp.MustCompile(`(?i)(password|secret|token)\s*'[^']+'`), replacement: "$1'[redacted]'"},
	}

	for i, l := range lines {
		l = strings.ReplaceAll(l, " sk-", " [redacted]")
		for _, pattern := range credentialPatterns {
			l = pattern.regex.ReplaceAllString(l, pattern.replacement)
		}
		out[i] = l
	}
	return out
}
