package engine

import (
	"strings"
	"testing"
)

func TestNormalizeSpace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses runs", "a  b\t\tc", "a b c"},
		{"trims ends", "  hello  ", "hello"},
		{"newlines", "line1\nline2\n\nline3", "line1 line2 line3"},
		{"already clean", "one two", "one two"},
		{"empty", "", ""},
		{"only whitespace", " \n\t ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeSpace(tt.in); got != tt.want {
				t.Errorf("NormalizeSpace(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips tags", "<b>dopamine</b> levels", "dopamine levels"},
		{"nested tags", "<p><i>sleep</i></p>", "sleep"},
		{"decodes entities", "don&#39;t &quot;panic&quot;", `don't "panic"`},
		{"no tags", "plain text", "plain text"},
		{"trims", "  <span>x</span>  ", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanHTML(tt.in); got != tt.want {
				t.Errorf("CleanHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncateMiddleOut(t *testing.T) {
	t.Run("under budget unchanged", func(t *testing.T) {
		text := "short transcript"
		if got := TruncateMiddleOut(text, 80000); got != text {
			t.Errorf("under-budget text modified: %q", got)
		}
	})

	t.Run("over budget keeps prefix and suffix", func(t *testing.T) {
		// budget: 10 tokens × 4 chars = 40 chars, portions of 20
		text := strings.Repeat("a", 30) + strings.Repeat("z", 30)
		got := TruncateMiddleOut(text, 10)

		if !strings.HasPrefix(got, text[:20]) {
			t.Errorf("prefix not preserved: %q", got[:25])
		}
		if !strings.HasSuffix(got, text[len(text)-20:]) {
			t.Errorf("suffix not preserved: %q", got[len(got)-25:])
		}
		if strings.Count(got, "[... middle portion truncated for length ...]") != 1 {
			t.Errorf("expected exactly one omission marker in %q", got)
		}
	})

	t.Run("exactly at budget unchanged", func(t *testing.T) {
		text := strings.Repeat("x", 40)
		if got := TruncateMiddleOut(text, 10); got != text {
			t.Errorf("at-budget text modified: %q", got)
		}
	})
}
