package quiz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

func fourOptions(correct string) []engine.Option {
	opts := make([]engine.Option, 0, 4)
	for _, id := range []string{"a", "b", "c", "d"} {
		opts = append(opts, engine.Option{ID: id, Text: "option " + id, Correct: id == correct})
	}
	return opts
}

func TestGenerateQuestions(t *testing.T) {
	svc := &fakeLLM{responses: []string{`{
		"questions": [
			{"id": 1, "type": "factual", "difficulty": "easy",
			 "question": "What does cold exposure raise?",
			 "options": [
				{"id": "a", "text": "Dopamine", "correct": true},
				{"id": "b", "text": "Cortisol", "correct": false},
				{"id": "c", "text": "Melatonin", "correct": false},
				{"id": "d", "text": "Insulin", "correct": false}
			 ],
			 "explanation": "Deliberate cold raises dopamine for hours."}
		]
	}`}}
	insights := []engine.Insight{{Insight: "Cold exposure raises dopamine", Type: "factual", Topic: "dopamine"}}

	questions, err := GenerateQuestions(context.Background(), svc, "Using Cold Exposure", "Dr. Susanna Soberg", insights)
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if len(questions) != 1 || questions[0].Question != "What does cold exposure raise?" {
		t.Errorf("questions = %+v", questions)
	}

	call := svc.calls[0]
	if call.system != engine.QuestionSystemInstruction {
		t.Errorf("system = %q", call.system)
	}
	if call.temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", call.temperature)
	}
	// Insights travel to the prompt as indented JSON.
	for _, want := range []string{"Using Cold Exposure", "Dr. Susanna Soberg", `"insight": "Cold exposure raises dopamine"`} {
		if !strings.Contains(call.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateQuestionsParseFailure(t *testing.T) {
	svc := &fakeLLM{responses: []string{"no json here"}}

	questions, err := GenerateQuestions(context.Background(), svc, "t", "g", nil)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if parseErr.Stage != "questions" {
		t.Errorf("stage = %q, want questions", parseErr.Stage)
	}
	if questions == nil || len(questions) != 0 {
		t.Errorf("questions = %v, want empty non-nil set", questions)
	}
}

func TestValidateQuestions(t *testing.T) {
	twoCorrect := fourOptions("a")
	twoCorrect[2].Correct = true

	tests := []struct {
		name      string
		questions []engine.Question
		want      []string
	}{
		{
			"valid",
			[]engine.Question{{ID: 1, Options: fourOptions("b")}},
			nil,
		},
		{
			"no correct option",
			[]engine.Question{{ID: 3, Options: fourOptions("")}},
			[]string{"question 3: 0 correct options, want exactly 1"},
		},
		{
			"two correct options",
			[]engine.Question{{ID: 2, Options: twoCorrect}},
			[]string{"question 2: 2 correct options, want exactly 1"},
		},
		{
			"three options",
			[]engine.Question{{ID: 1, Options: fourOptions("a")[:3]}},
			[]string{"question 1: 3 options, want 4"},
		},
		{
			"missing id falls back to position",
			[]engine.Question{{Options: fourOptions("")}},
			[]string{"question 1: 0 correct options, want exactly 1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateQuestions(tt.questions)
			if len(got) != len(tt.want) {
				t.Fatalf("violations = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("violation[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
