package sources

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

// Gemini REST client for multimodal (audio + text) generation. Only the
// generateContent surface is implemented; audio rides inline as base64,
// which caps practical input around 20 MB.

const (
	GeminiDefaultBase  = "https://generativelanguage.googleapis.com/v1beta"
	GeminiDefaultModel = "gemini-2.0-flash"

	geminiMaxRespBytes = 4 * 1024 * 1024
)

type GeminiClient struct {
	apiKey string
	base   string
	model  string
	httpc  *http.Client
}

// NewGeminiClient creates a client. Empty base/model fall back to defaults;
// a nil httpc falls back to http.DefaultClient.
func NewGeminiClient(apiKey, base, model string, httpc *http.Client) *GeminiClient {
	if base == "" {
		base = GeminiDefaultBase
	}
	if model == "" {
		model = GeminiDefaultModel
	}
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &GeminiClient{apiKey: apiKey, base: base, model: model, httpc: httpc}
}

// Model returns the configured model identifier.
func (c *GeminiClient) Model() string { return c.model }

// --- generateContent request/response types ---

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateFromAudio sends an audio file plus an instruction prompt in one
// request and returns the model's text response.
func (c *GeminiClient) GenerateFromAudio(ctx context.Context, audioPath, prompt string, temperature float64, maxTokens int) (string, error) {
	engine.IncrGeminiCalls()

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		engine.IncrGeminiErrors()
		return "", fmt.Errorf("read audio: %w", err)
	}

	reqBody, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{InlineData: &geminiInlineData{
					MimeType: "audio/mp3",
					Data:     base64.StdEncoding.EncodeToString(audio),
				}},
				{Text: prompt},
			},
		}},
		GenerationConfig: geminiGenConfig{Temperature: temperature, MaxOutputTokens: maxTokens},
	})
	if err != nil {
		engine.IncrGeminiErrors()
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.base, c.model, url.QueryEscape(c.apiKey))
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return c.httpc.Do(req)
	})
	if err != nil {
		engine.IncrGeminiErrors()
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, geminiMaxRespBytes))
	if err != nil {
		engine.IncrGeminiErrors()
		return "", err
	}

	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		engine.IncrGeminiErrors()
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if result.Error != nil {
		engine.IncrGeminiErrors()
		return "", fmt.Errorf("gemini API %d (%s): %s", result.Error.Code, result.Error.Status, result.Error.Message)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		engine.IncrGeminiErrors()
		return "", errors.New("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}
