package engine

import (
	"html"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

var (
	htmlTagRe = regexp.MustCompile(`<[^>]+>`)
	wsRe      = regexp.MustCompile(`\s+`)
)

// CleanHTML strips HTML tags, decodes entities, and trims whitespace.
// Caption XML double-encodes, so entities survive the XML layer.
func CleanHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(htmlTagRe.ReplaceAllString(s, "")))
}

// NormalizeSpace collapses runs of whitespace to single spaces and trims.
func NormalizeSpace(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

// Truncate returns the first n bytes of s.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// TruncateAtWord truncates a string to maxLen runes at a word boundary.
func TruncateAtWord(s string, maxLen int) string {
	return strutil.TruncateAtWord(s, maxLen)
}

// truncationMarker separates the kept head and tail of an over-budget text.
const truncationMarker = "\n\n[... middle portion truncated for length ...]\n\n"

// TruncateMiddleOut caps text at a token budget (approximated as 4 chars
// per token) by keeping the first and last halves of the character budget
// with an omission marker between them. Keeps intros and closing summaries,
// drops mid-episode detail.
func TruncateMiddleOut(text string, maxTokens int) string {
	maxChars := maxTokens * 4
	if len(text) <= maxChars {
		return text
	}
	portion := maxChars / 2
	return text[:portion] + truncationMarker + text[len(text)-portion:]
}
