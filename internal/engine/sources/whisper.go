package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

// OpenAI-compatible speech-to-text client. Uses verbose_json so segment
// timestamps survive into caption fragments.

const (
	WhisperDefaultBase  = "https://api.openai.com/v1"
	WhisperDefaultModel = "whisper-1"

	// WhisperMaxFileBytes is the API's upload limit; larger files must be
	// split and transcribed chunk by chunk.
	WhisperMaxFileBytes = 25 * 1024 * 1024
)

type WhisperClient struct {
	apiKey string
	base   string
	model  string
	httpc  *http.Client
}

// NewWhisperClient creates a client. Empty base/model fall back to defaults;
// a nil httpc falls back to http.DefaultClient.
func NewWhisperClient(apiKey, base, model string, httpc *http.Client) *WhisperClient {
	if base == "" {
		base = WhisperDefaultBase
	}
	if model == "" {
		model = WhisperDefaultModel
	}
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &WhisperClient{apiKey: apiKey, base: base, model: model, httpc: httpc}
}

// WhisperSegment is one timestamped span of transcribed speech.
type WhisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// WhisperResult carries the transcription plus the audio duration the API
// reports, used to offset timestamps across chunked uploads.
type WhisperResult struct {
	Text     string           `json:"text"`
	Duration float64          `json:"duration"`
	Segments []WhisperSegment `json:"segments"`
}

// Transcribe uploads one audio file and returns segment-level timestamps.
// The caller is responsible for honoring WhisperMaxFileBytes.
func (c *WhisperClient) Transcribe(ctx context.Context, audioPath string) (*WhisperResult, error) {
	engine.IncrWhisperCalls()

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		engine.IncrWhisperErrors()
		return nil, fmt.Errorf("read audio: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("model", c.model); err != nil {
		return nil, err
	}
	if err := w.WriteField("response_format", "verbose_json"); err != nil {
		return nil, err
	}
	if err := w.WriteField("timestamp_granularities[]", "segment"); err != nil {
		return nil, err
	}
	fw, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(audio); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/audio/transcriptions", bytes.NewReader(buf.Bytes()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		return c.httpc.Do(req)
	})
	if err != nil {
		engine.IncrWhisperErrors()
		return nil, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		engine.IncrWhisperErrors()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("whisper API %d: %s", resp.StatusCode, snippet)
	}

	var result WhisperResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		engine.IncrWhisperErrors()
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}
	return &result, nil
}
