package quiz

import (
	"regexp"
	"strings"
)

// SoloEpisodeGuest is the attribution used when no guest name can be
// read from a title. It feeds both generation prompts so questions
// attribute recommendations to the host.
const SoloEpisodeGuest = "Solo episode (Andrew Huberman only)"

// guestPattern is one title-matching rule. Excludes reject a match when
// the captured name contains any of the listed words.
type guestPattern struct {
	re       *regexp.Regexp
	excludes []string
}

// guestPatterns are tried in order against episode titles. Title shapes
// each rule targets:
//
//	"How to Improve Memory | Dr. Charan Ranganath"
//	"Dr. Matt Walker: Improve Sleep to Boost Mood"
//	"The Art of Seduction | Robert Greene"
//
// Pipe-separated channel suffixes ("| Huberman Lab", "| Guest Series")
// are excluded from the bare-name rule.
var guestPatterns = []guestPattern{
	{re: regexp.MustCompile(`\|\s*(Dr\.?\s+[A-Z][a-z]+\s+[A-Z][a-z]+)`)},
	{re: regexp.MustCompile(`^(Dr\.?\s+[A-Z][a-z]+\s+[A-Z][a-z]+)\s*:`)},
	{
		re:       regexp.MustCompile(`\|\s*([A-Z][a-z]+\s+[A-Z][a-z]+)(?:\s*\||$)`),
		excludes: []string{"Huberman", "Series"},
	},
}

// ExtractGuest pulls a guest name out of an episode title. Returns
// false when the title reads like a solo episode. Heuristic: false
// negatives are expected and treated as solo episodes by callers.
func ExtractGuest(title string) (string, bool) {
	for _, p := range guestPatterns {
		m := p.re.FindStringSubmatch(title)
		if m == nil {
			continue
		}
		name := m[1]
		if containsAny(name, p.excludes) {
			continue
		}
		return name, true
	}
	return "", false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
