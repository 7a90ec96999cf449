package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

// AudioLLM is the audio-capable generation boundary for the one-call
// quiz path. *sources.GeminiClient satisfies it.
type AudioLLM interface {
	GenerateFromAudio(ctx context.Context, audioPath, prompt string, temperature float64, maxTokens int) (string, error)
}

const (
	audioQuizTemperature = 0.7
	audioQuizMaxTokens   = 4096
)

// AudioQuizResult is the one-call generation payload: the summary and
// takeaways ride along with the questions.
type AudioQuizResult struct {
	Summary      string            `json:"summary"`
	KeyTakeaways []string          `json:"key_takeaways"`
	Questions    []engine.Question `json:"questions"`
}

// GenerateQuizFromAudio sends podcast audio plus the instructional
// template to the model in a single call and parses the combined
// payload. Malformed responses come back as *ParseError.
func GenerateQuizFromAudio(ctx context.Context, svc AudioLLM, audioPath, title string) (*AudioQuizResult, error) {
	prompt := fmt.Sprintf("Video Title: %s\n\n%s", title, engine.AudioQuestionPrompt)

	raw, err := svc.GenerateFromAudio(ctx, audioPath, prompt, audioQuizTemperature, audioQuizMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("audio generation: %w", err)
	}

	var result AudioQuizResult
	if err := json.Unmarshal([]byte(extractFencedJSON(raw)), &result); err != nil {
		return nil, &ParseError{Stage: "audio", Err: err}
	}
	return &result, nil
}

// extractFencedJSON pulls the payload out of a markdown code fence
// appearing anywhere in the response; unfenced responses pass through
// trimmed. A fence left unclosed runs to the end of the response.
func extractFencedJSON(s string) string {
	if _, after, ok := strings.Cut(s, "```json"); ok {
		inner, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(inner)
	}
	if _, after, ok := strings.Cut(s, "```"); ok {
		inner, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(inner)
	}
	return strings.TrimSpace(s)
}
