package quiz

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

// insightTokenBudget caps transcript input to the insight prompt,
// estimated at 4 chars per token. Over-budget transcripts keep their
// beginning and end with the middle cut out.
const insightTokenBudget = 80000

// insightTemperature keeps extraction grounded in the transcript;
// questionTemperature allows variety in phrasing and distractors.
const (
	insightTemperature  = 0.3
	questionTemperature = 0.7
)

// ParseError marks an LLM response that could not be decoded as the
// expected JSON payload. Recoverable: orchestrators record the outcome
// and move on instead of aborting the batch.
type ParseError struct {
	Stage string // insights | questions | audio | mood
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s response parse: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExtractInsights distills a reassembled transcript into quiz-ready
// insights, the first of the two generation stages. Guest feeds prompt
// attribution; pass SoloEpisodeGuest when no guest was extracted.
func ExtractInsights(ctx context.Context, svc engine.LLMService, title, guest, transcript string) ([]engine.Insight, error) {
	prompt := fmt.Sprintf(engine.InsightExtractionPrompt,
		title, guest, engine.TruncateMiddleOut(transcript, insightTokenBudget))

	raw, err := svc.Complete(ctx, engine.InsightSystemInstruction, prompt, insightTemperature, 0)
	if err != nil {
		return nil, fmt.Errorf("insight extraction: %w", err)
	}

	insights, err := decodeInsights(raw)
	if err != nil {
		return nil, &ParseError{Stage: "insights", Err: err}
	}
	return insights, nil
}

// decodeInsights accepts the payload shapes models actually produce: a
// bare array, an array wrapped in prose, an object with an "insights"
// key, or an object whose first list-valued member is the array. An
// empty object decodes as zero insights, not an error.
func decodeInsights(raw string) ([]engine.Insight, error) {
	var arr []engine.Insight
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		return arr, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		if embedded := engine.ExtractJSONArray(raw); embedded != "" {
			if jsonErr := json.Unmarshal([]byte(embedded), &arr); jsonErr == nil {
				return arr, nil
			}
		}
		return nil, err
	}
	if v, ok := obj["insights"]; ok {
		if err := json.Unmarshal(v, &arr); err != nil {
			return nil, fmt.Errorf("insights key: %w", err)
		}
		return arr, nil
	}
	if len(obj) == 0 {
		return nil, nil
	}
	for _, v := range obj {
		if err := json.Unmarshal(v, &arr); err == nil && arr != nil {
			return arr, nil
		}
	}
	return nil, fmt.Errorf("no insight list in response object")
}
