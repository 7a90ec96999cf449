package quiz

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type audioCall struct {
	audioPath   string
	prompt      string
	temperature float64
	maxTokens   int
}

type fakeAudioLLM struct {
	response string
	err      error
	calls    []audioCall
}

func (f *fakeAudioLLM) GenerateFromAudio(_ context.Context, audioPath, prompt string, temperature float64, maxTokens int) (string, error) {
	f.calls = append(f.calls, audioCall{audioPath, prompt, temperature, maxTokens})
	return f.response, f.err
}

func TestExtractFencedJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose before fence", "Here is the quiz:\n```json\n{\"a\":1}\n```\nEnjoy!", `{"a":1}`},
		{"unclosed fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"no fence", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractFencedJSON(tt.in); got != tt.want {
				t.Errorf("extractFencedJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateQuizFromAudio(t *testing.T) {
	svc := &fakeAudioLLM{response: "```json\n" + `{
		"summary": "Sleep drives memory consolidation.",
		"key_takeaways": ["Keep a fixed wake time", "Get morning light"],
		"questions": [
			{"id": 1, "question": "What consolidates memory?",
			 "options": [
				{"id": "a", "text": "Sleep", "correct": true},
				{"id": "b", "text": "Caffeine", "correct": false},
				{"id": "c", "text": "Sugar", "correct": false},
				{"id": "d", "text": "Noise", "correct": false}
			 ]}
		]
	}` + "\n```"}

	result, err := GenerateQuizFromAudio(context.Background(), svc, "/tmp/abc.mp3", "Master Your Sleep")
	if err != nil {
		t.Fatalf("GenerateQuizFromAudio: %v", err)
	}
	if result.Summary != "Sleep drives memory consolidation." {
		t.Errorf("summary = %q", result.Summary)
	}
	if len(result.KeyTakeaways) != 2 || len(result.Questions) != 1 {
		t.Errorf("takeaways = %d, questions = %d", len(result.KeyTakeaways), len(result.Questions))
	}

	call := svc.calls[0]
	if call.audioPath != "/tmp/abc.mp3" {
		t.Errorf("audioPath = %q", call.audioPath)
	}
	if !strings.HasPrefix(call.prompt, "Video Title: Master Your Sleep\n\n") {
		t.Errorf("prompt does not lead with the title: %q", call.prompt[:40])
	}
	if call.temperature != 0.7 || call.maxTokens != 4096 {
		t.Errorf("temperature = %v, maxTokens = %d", call.temperature, call.maxTokens)
	}
}

func TestGenerateQuizFromAudioParseError(t *testing.T) {
	svc := &fakeAudioLLM{response: "the audio was inaudible"}

	_, err := GenerateQuizFromAudio(context.Background(), svc, "/tmp/abc.mp3", "t")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if parseErr.Stage != "audio" {
		t.Errorf("stage = %q, want audio", parseErr.Stage)
	}
}

func TestGenerateQuizFromAudioTransportError(t *testing.T) {
	boom := errors.New("upload rejected")
	svc := &fakeAudioLLM{err: boom}

	_, err := GenerateQuizFromAudio(context.Background(), svc, "/tmp/abc.mp3", "t")
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped upload error", err)
	}
}
