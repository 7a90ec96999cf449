package quiz

import "testing"

func TestExtractGuest(t *testing.T) {
	tests := []struct {
		title string
		want  string
		ok    bool
	}{
		{"How to Improve Memory & Focus | Dr. Charan Ranganath", "Dr. Charan Ranganath", true},
		{"Sleep Toolkit | Dr Matthew Walker", "Dr Matthew Walker", true},
		{"Dr. Andy Galpin: How to Build Strength", "Dr. Andy Galpin", true},
		{"The Science of Creativity | Rick Rubin", "Rick Rubin", true},
		{"Master Your Mind | Robert Greene | Huberman Lab", "Robert Greene", true},
		{"Foundational Science Based Protocol", "", false},
		{"Sleep Toolkit | Huberman Lab Guest Series", "", false},
		{"Focus Toolkit | Essentials Series", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, ok := ExtractGuest(tt.title)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ExtractGuest(%q) = %q, %v; want %q, %v", tt.title, got, ok, tt.want, tt.ok)
			}
		})
	}
}
