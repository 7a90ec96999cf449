package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

// GenerateQuestions turns extracted insights into the final quiz
// payload, the second generation stage. On a malformed response the
// returned set is empty and the error is a *ParseError; callers are
// expected to persist the artifact with zero questions.
func GenerateQuestions(ctx context.Context, svc engine.LLMService, title, guest string, insights []engine.Insight) ([]engine.Question, error) {
	serialized, err := json.MarshalIndent(insights, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize insights: %w", err)
	}

	prompt := fmt.Sprintf(engine.QuestionGenerationPrompt, title, guest, serialized)
	raw, err := svc.Complete(ctx, engine.QuestionSystemInstruction, prompt, questionTemperature, 0)
	if err != nil {
		return nil, fmt.Errorf("question generation: %w", err)
	}

	var payload struct {
		Questions []engine.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return []engine.Question{}, &ParseError{Stage: "questions", Err: err}
	}

	for _, v := range ValidateQuestions(payload.Questions) {
		slog.Warn("question contract violation",
			slog.String("title", title),
			slog.String("violation", v))
	}
	return payload.Questions, nil
}

// ValidateQuestions checks the quiz contract: exactly four options per
// question, exactly one marked correct. Violations are reported as
// warnings, never as errors.
func ValidateQuestions(questions []engine.Question) []string {
	var violations []string
	for i, q := range questions {
		id := q.ID
		if id == 0 {
			id = i + 1
		}
		if len(q.Options) != 4 {
			violations = append(violations,
				fmt.Sprintf("question %d: %d options, want 4", id, len(q.Options)))
		}
		correct := 0
		for _, opt := range q.Options {
			if opt.Correct {
				correct++
			}
		}
		if correct != 1 {
			violations = append(violations,
				fmt.Sprintf("question %d: %d correct options, want exactly 1", id, correct))
		}
	}
	return violations
}
