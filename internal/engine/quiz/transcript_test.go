package quiz

import (
	"regexp"
	"strings"
	"testing"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

func frag(text string, start, dur float64) engine.CaptionFragment {
	return engine.CaptionFragment{Text: text, Start: start, Duration: dur}
}

func TestReassembleEmpty(t *testing.T) {
	if got := Reassemble(nil, true); got != "" {
		t.Errorf("nil fragments: got %q, want empty", got)
	}
	if got := Reassemble([]engine.CaptionFragment{}, true); got != "" {
		t.Errorf("empty fragments: got %q, want empty", got)
	}
}

func TestReassembleMergesFragments(t *testing.T) {
	frags := []engine.CaptionFragment{
		frag("welcome to the", 0.32, 0.9),
		frag("huberman Lab podcast", 1.2, 1.1),
	}
	got := Reassemble(frags, true)
	want := "[0:00] welcome to the huberman Lab podcast"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReassembleGapBreak(t *testing.T) {
	frags := []engine.CaptionFragment{
		frag("part one", 0, 1.0),
		frag("ends here", 1.2, 1.0),
		frag("part two", 10.0, 1.0),
	}
	got := Reassemble(frags, true)
	want := "[0:00] part one ends here\n\n[0:10] part two"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReassembleParagraphLabels(t *testing.T) {
	// Labels come from the first fragment that contributes text, not
	// from dropped annotations before it.
	frags := []engine.CaptionFragment{
		frag("[Music]", 60.0, 1.0),
		frag("hello there", 61.2, 0.8),
		frag("[Applause]", 62.1, 0.3),
		frag("general kenobi", 62.5, 1.0),
	}
	got := Reassemble(frags, true)
	want := "[1:01] hello there general kenobi"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReassembleBracketAnnotationsDropped(t *testing.T) {
	frags := []engine.CaptionFragment{
		frag("[Music]", 0, 1.0),
		frag("real speech", 1.0, 1.0),
		frag("[Laughter]", 2.0, 0.5),
	}
	got := Reassemble(frags, true)
	if strings.Contains(got, "[Music]") || strings.Contains(got, "[Laughter]") {
		t.Errorf("bracket annotation leaked into output: %q", got)
	}
	if !strings.Contains(got, "real speech") {
		t.Errorf("speech missing from output: %q", got)
	}
}

func TestReassembleFillerRemoval(t *testing.T) {
	frags := []engine.CaptionFragment{
		frag("I um think", 0, 1.0),
		frag("uh that hmm works", 1.0, 1.0),
		frag("my umbrella survived summer", 2.0, 1.0),
	}
	got := Reassemble(frags, true)

	standalone := regexp.MustCompile(`(?i)\b(um|uh|uhm|hmm)\b`)
	if standalone.MatchString(got) {
		t.Errorf("standalone filler in output: %q", got)
	}
	for _, want := range []string{"I think", "that works", "umbrella", "summer"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestReassembleAllFillerNeverEmitted(t *testing.T) {
	frags := []engine.CaptionFragment{
		frag("um", 0, 0.5),
		frag("uh hmm", 1.0, 0.5),
	}
	if got := Reassemble(frags, true); got != "" {
		t.Errorf("filler-only input produced output: %q", got)
	}
}

func TestReassembleSponsorSkip(t *testing.T) {
	frags := []engine.CaptionFragment{
		frag("welcome to the show", 0, 1.0),
		frag("today we discuss sleep.", 1.0, 1.0),
		frag("thanks to our sponsors", 2.0, 1.0),   // opens skip window [2, 62)
		frag("buy ag1 and use code pod", 30.0, 2.0), // inside window
		frag("back to science", 62.5, 1.0),
		frag("melatonin regulates sleep onset", 63.5, 1.5),
	}
	got := Reassemble(frags, true)

	for _, banned := range []string{"sponsors", "ag1", "use code"} {
		if strings.Contains(got, banned) {
			t.Errorf("sponsor content %q leaked into output: %q", banned, got)
		}
	}

	paras := strings.Split(got, "\n\n")
	if len(paras) != 2 {
		t.Fatalf("got %d paragraphs, want 2: %q", len(paras), got)
	}
	if paras[0] != "[0:00] welcome to the show today we discuss sleep." {
		t.Errorf("pre-sponsor paragraph: %q", paras[0])
	}
	// Post-sponsor label must come from the first fragment that made it
	// into the paragraph, not the stale pre-sponsor buffer start.
	if paras[1] != "[1:02] back to science melatonin regulates sleep onset" {
		t.Errorf("post-sponsor paragraph: %q", paras[1])
	}
}

func TestReassembleSponsorsKeptWhenDisabled(t *testing.T) {
	frags := []engine.CaptionFragment{
		frag("thanks to our sponsors", 0, 1.0),
		frag("buy ag1 today", 1.0, 1.0),
	}
	got := Reassemble(frags, false)
	if !strings.Contains(got, "sponsors") || !strings.Contains(got, "ag1") {
		t.Errorf("sponsor content dropped with skipSponsors=false: %q", got)
	}
}

func TestReassembleLengthBreak(t *testing.T) {
	var frags []engine.CaptionFragment
	for i := 0; i < 30; i++ {
		frags = append(frags, frag("abcdefghijklmnopqrst", float64(i), 0.5))
	}
	got := Reassemble(frags, true)

	paras := strings.Split(got, "\n\n")
	if len(paras) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(paras))
	}
	// 24 fragments of 20 chars joined by spaces pass the 500-char cap.
	if !strings.HasPrefix(paras[0], "[0:00] ") {
		t.Errorf("first paragraph label: %q", paras[0][:8])
	}
	if !strings.HasPrefix(paras[1], "[0:24] ") {
		t.Errorf("second paragraph label: %q", paras[1][:8])
	}
}

func TestReassembleSentenceBreak(t *testing.T) {
	frags := []engine.CaptionFragment{
		frag("one", 0, 0.5), frag("two", 1, 0.5), frag("three", 2, 0.5),
		frag("four", 3, 0.5), frag("five", 4, 0.5), frag("six", 5, 0.5),
		frag("sentence ends.", 6, 0.5),
		frag("new paragraph", 7, 0.5),
	}
	got := Reassemble(frags, true)

	paras := strings.Split(got, "\n\n")
	if len(paras) != 2 {
		t.Fatalf("got %d paragraphs, want 2: %q", len(paras), got)
	}
	if paras[1] != "[0:07] new paragraph" {
		t.Errorf("second paragraph: %q", paras[1])
	}
}

func TestReassembleNoSentenceBreakOnShortBuffer(t *testing.T) {
	frags := []engine.CaptionFragment{
		frag("short.", 0, 0.5),
		frag("still going", 1, 0.5),
	}
	got := Reassemble(frags, true)
	if strings.Contains(got, "\n\n") {
		t.Errorf("short buffer broke on punctuation: %q", got)
	}
}

func TestTimeLabel(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "[0:00]"},
		{59.9, "[0:59]"},
		{60, "[1:00]"},
		{65.7, "[1:05]"},
		{3725, "[62:05]"},
	}
	for _, tt := range tests {
		if got := timeLabel(tt.seconds); got != tt.want {
			t.Errorf("timeLabel(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
