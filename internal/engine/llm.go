package engine

import (
	"context"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
)

// LLMService is the narrow text-generation boundary the quiz stages
// depend on. The handle is constructed once and injected, so tests can
// substitute a double.
type LLMService interface {
	Complete(ctx context.Context, system, prompt string, temperature float64, maxTokens int) (string, error)
}

// ChatLLM adapts the go-kit chat client to LLMService, adding metrics
// and fence stripping.
type ChatLLM struct {
	client *llm.Client
}

// NewChatLLM wraps a go-kit chat client in the LLMService boundary.
func NewChatLLM(client *llm.Client) *ChatLLM {
	return &ChatLLM{client: client}
}

// Complete sends a prompt with a per-call temperature. maxTokens <= 0
// keeps the client-level default.
func (c *ChatLLM) Complete(ctx context.Context, system, prompt string, temperature float64, maxTokens int) (string, error) {
	metrics.LLMCalls.Add(1)
	var resp string
	var err error
	if maxTokens > 0 {
		resp, err = c.client.Complete(ctx, system, prompt,
			llm.WithChatTemperature(temperature),
			llm.WithChatMaxTokens(maxTokens),
		)
	} else {
		resp, err = c.client.Complete(ctx, system, prompt,
			llm.WithChatTemperature(temperature),
		)
	}
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	return stripFences(resp), nil
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractJSONArray extracts the first balanced JSON array from text
// where the model wrapped the payload in prose. Returns "" if no
// complete array is found.
func ExtractJSONArray(raw string) string {
	start := strings.IndexByte(raw, '[')
	if start < 0 {
		return ""
	}
	depth := 0
	inStr := false
	var prev byte
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inStr {
			if ch == '"' && prev != '\\' {
				inStr = false
			}
			if prev == '\\' && ch == '\\' {
				prev = 0
				continue
			}
			prev = ch
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
		prev = ch
	}
	return ""
}
