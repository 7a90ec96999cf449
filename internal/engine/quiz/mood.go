package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

// MoodCategories is the fixed label set for artifact classification.
// Prompts embed the list; responses outside it are kept but flagged.
var MoodCategories = []string{
	"Foundational Knowledge",
	"Conceptual Understanding",
	"Procedural Skills",
	"Critical Thinking & Reasoning",
	"Problem Solving",
	"Practical Application",
	"Memory & Recall",
	"Metacognition & Learning Strategies",
	"Creativity & Synthesis",
	"Ethics, Context & Impact",
}

// moodMaxTokens caps the response; a category name never needs more.
const moodMaxTokens = 50

// ClassifyMood labels text with exactly one mood category. by selects
// the prompt pair: "summary" classifies episode summaries, anything
// else classifies video titles. Temperature 0 keeps labels stable
// across reruns.
func ClassifyMood(ctx context.Context, svc engine.LLMService, text, by string) (string, error) {
	categories := bulletedCategories()

	var system, prompt string
	if by == "summary" {
		system = engine.MoodSummaryInstruction
		prompt = fmt.Sprintf(engine.MoodSummaryPrompt, categories, text)
	} else {
		system = engine.MoodTitleInstruction
		prompt = fmt.Sprintf(engine.MoodTitlePrompt, categories, text)
	}

	mood, err := svc.Complete(ctx, system, prompt, 0, moodMaxTokens)
	if err != nil {
		return "", fmt.Errorf("mood classification: %w", err)
	}
	mood = strings.TrimSpace(mood)
	if !knownMood(mood) {
		slog.Warn("mood outside category table", slog.String("mood", mood))
	}
	return mood, nil
}

func bulletedCategories() string {
	lines := make([]string, len(MoodCategories))
	for i, cat := range MoodCategories {
		lines[i] = "- " + cat
	}
	return strings.Join(lines, "\n")
}

func knownMood(mood string) bool {
	for _, cat := range MoodCategories {
		if cat == mood {
			return true
		}
	}
	return false
}
