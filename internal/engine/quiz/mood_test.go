package quiz

import (
	"context"
	"strings"
	"testing"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

func TestClassifyMoodByTitle(t *testing.T) {
	svc := &fakeLLM{responses: []string{" Problem Solving \n"}}

	mood, err := ClassifyMood(context.Background(), svc, "How to Focus Under Pressure", "title")
	if err != nil {
		t.Fatalf("ClassifyMood: %v", err)
	}
	if mood != "Problem Solving" {
		t.Errorf("mood = %q, want trimmed category", mood)
	}

	call := svc.calls[0]
	if call.system != engine.MoodTitleInstruction {
		t.Errorf("system = %q, want title instruction", call.system)
	}
	if call.temperature != 0 || call.maxTokens != moodMaxTokens {
		t.Errorf("temperature = %v, maxTokens = %d", call.temperature, call.maxTokens)
	}
	if !strings.Contains(call.prompt, "How to Focus Under Pressure") {
		t.Errorf("prompt missing title")
	}
	// Every category rides along as a bullet.
	for _, cat := range MoodCategories {
		if !strings.Contains(call.prompt, "- "+cat) {
			t.Errorf("prompt missing category %q", cat)
		}
	}
}

func TestClassifyMoodBySummary(t *testing.T) {
	svc := &fakeLLM{responses: []string{"Memory & Recall"}}

	mood, err := ClassifyMood(context.Background(), svc, "An episode about spaced repetition.", "summary")
	if err != nil {
		t.Fatalf("ClassifyMood: %v", err)
	}
	if mood != "Memory & Recall" {
		t.Errorf("mood = %q", mood)
	}
	if svc.calls[0].system != engine.MoodSummaryInstruction {
		t.Errorf("system = %q, want summary instruction", svc.calls[0].system)
	}
}

func TestClassifyMoodKeepsUnknownCategory(t *testing.T) {
	svc := &fakeLLM{responses: []string{"Cooking"}}

	mood, err := ClassifyMood(context.Background(), svc, "t", "title")
	if err != nil {
		t.Fatalf("ClassifyMood: %v", err)
	}
	if mood != "Cooking" {
		t.Errorf("mood = %q, unknown category should be kept verbatim", mood)
	}
}
