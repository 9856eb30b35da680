package core

import (
	"html"
	"regexp"
	"strings"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// SanitizeText strips HTML tags, escapes what remains and trims
// whitespace. Applied to every user-supplied string before storage.
func SanitizeText(text string) string {
	if text == "" {
		return text
	}
	clean := htmlTagPattern.ReplaceAllString(text, "")
	clean = html.EscapeString(clean)
	return strings.TrimSpace(clean)
}

// SanitizeSlice sanitizes each element in place and returns the slice.
func SanitizeSlice(items []string) []string {
	for i, item := range items {
		items[i] = SanitizeText(item)
	}
	return items
}
