// Package quiz turns YouTube playlist content into quiz material:
// transcript reassembly, guest attribution, LLM generation stages,
// artifact persistence, and the batch orchestrators that tie them
// together. Stages take their dependencies (LLM handles, stores,
// clients) as arguments so tests never touch process state.
package quiz

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

// Paragraph assembly tuning. Raw captions arrive as tiny chunks a few
// words long; these thresholds control where paragraph breaks land.
const (
	paragraphGapSeconds = 2.0 // pause between fragments that forces a break
	paragraphMaxChars   = 500
	paragraphMinFrags   = 5    // sentence-end breaks only past this many fragments
	sponsorSkipSeconds  = 60.0 // content window dropped after a sponsor mention
)

// sponsorPatterns match ad-read segments in health/science podcasts:
// brand names plus generic sponsorship phrasing. Matching any of these
// flushes the current paragraph and opens a skip window.
var sponsorPatterns = compilePatterns([]string{
	`\bag1\b`,
	`\bathletic greens\b`,
	`\blmnt\b`,
	`\belement\b`,
	`\binsidetracker\b`,
	`\beight sleep\b`,
	`\bwhoop\b`,
	`\bour sponsors\b`,
	`\btoday's sponsor\b`,
	`\bsponsored by\b`,
	`\buse code\b`,
	`\bdiscount code\b`,
	`\bpromo code\b`,
	`\bdrinklmnt\b`,
	`\bathleticgreens\b`,
})

// fillerRe removes spoken filler words before fragments join a paragraph.
var fillerRe = regexp.MustCompile(`(?i)\b(um|uh|uhm|hmm)\b`)

func compilePatterns(exprs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

// isSponsorText reports whether lowercased fragment text reads like an
// ad segment.
func isSponsorText(lower string) bool {
	for _, re := range sponsorPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// cleanFragmentText strips filler words and normalizes whitespace.
func cleanFragmentText(text string) string {
	return engine.NormalizeSpace(fillerRe.ReplaceAllString(text, ""))
}

// timeLabel formats a start offset as a [m:ss] paragraph label.
func timeLabel(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("[%d:%02d]", total/60, total%60)
}

// Reassemble merges tiny timestamped caption fragments into readable
// timestamped paragraphs:
//
//	{"welcome to the", 0.32} {"huberman Lab podcast", 1.2} ...
//	  -> "[0:00] welcome to the huberman Lab podcast ..."
//
// Bracketed annotations ([Music], [Applause]) are dropped. Filler words
// are removed. When skipSponsors is set, a fragment matching a sponsor
// pattern closes the current paragraph and drops the next 60 seconds of
// content. Paragraphs close on a >2s pause to the next fragment, on
// joined length passing 500 chars, or on terminal punctuation once the
// buffer holds more than 5 fragments. Every paragraph label is the start
// time of its first contributing fragment.
func Reassemble(fragments []engine.CaptionFragment, skipSponsors bool) string {
	if len(fragments) == 0 {
		return ""
	}

	var paragraphs []string
	var buffer []string
	var bufStart float64
	joinedLen := 0

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		paragraphs = append(paragraphs, timeLabel(bufStart)+" "+strings.Join(buffer, " "))
		buffer = buffer[:0]
		joinedLen = 0
	}

	skipUntil := 0.0
	for i, frag := range fragments {
		text := strings.TrimSpace(frag.Text)

		if skipSponsors && frag.Start < skipUntil {
			continue
		}
		if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
			continue
		}
		if skipSponsors && isSponsorText(strings.ToLower(text)) {
			flush()
			skipUntil = frag.Start + sponsorSkipSeconds
			continue
		}

		if cleaned := cleanFragmentText(text); cleaned != "" {
			if len(buffer) == 0 {
				bufStart = frag.Start
			} else {
				joinedLen++ // joining space
			}
			buffer = append(buffer, cleaned)
			joinedLen += len(cleaned)
		}

		// Break on a long pause, an oversized paragraph, or a sentence
		// end once the buffer has some substance. The punctuation check
		// uses the original text: cleaning never touches trailing marks.
		if i+1 < len(fragments) {
			gap := fragments[i+1].Start - frag.Start
			endsSentence := false
			if text != "" {
				last := text[len(text)-1]
				endsSentence = last == '.' || last == '?' || last == '!'
			}
			if gap > paragraphGapSeconds ||
				joinedLen > paragraphMaxChars ||
				(endsSentence && len(buffer) > paragraphMinFrags) {
				flush()
			}
		}
	}
	flush()

	return strings.Join(paragraphs, "\n\n")
}
