// Package sanitize provides text sanitization for stored claim data.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	// blockTagRegex matches tags that end a visual line in portal dumps
	blockTagRegex = regexp.MustCompile(`(?i)<\s*(br\s*/?|/p|/div|/tr|/li|/h[1-6]|/pre|/textarea)\s*>`)
	// cellTagRegex matches table cell boundaries
	cellTagRegex = regexp.MustCompile(`(?i)<\s*/t[dh]\s*>`)
	// scriptRegex matches script and style blocks including their content
	scriptRegex = regexp.MustCompile(`(?is)<\s*(script|style)[^>]*>.*?<\s*/\s*(script|style)\s*>`)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = html.UnescapeString(result)
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes a short user-provided field such as insurer or cause.
func Text(s string) string {
	return StripHTML(s)
}

// DocumentText prepares a claim document dump for phone extraction.
// Line breaks matter downstream, so block-level tags become newlines,
// table cells become spaces and CRLF/CR are folded to LF. Plain text
// passes through with only line endings changed.
func DocumentText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	if !strings.Contains(s, "<") {
		return html.UnescapeString(s)
	}

	s = scriptRegex.ReplaceAllString(s, "")
	s = blockTagRegex.ReplaceAllString(s, "\n")
	s = cellTagRegex.ReplaceAllString(s, " ")
	s = htmlTagRegex.ReplaceAllString(s, "")
	return html.UnescapeString(s)
}
