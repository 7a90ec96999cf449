package sources

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempAudio(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.mp3")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestGeminiGenerateFromAudio(t *testing.T) {
	audio := []byte("fake mp3 bytes")
	var gotReq geminiRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "generated "}, {"text": "quiz"}},
				},
				"finishReason": "STOP",
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewGeminiClient("test-key", srv.URL, "", srv.Client())
	out, err := client.GenerateFromAudio(context.Background(), writeTempAudio(t, audio), "make a quiz", 0.7, 4096)
	require.NoError(t, err)
	assert.Equal(t, "generated quiz", out)

	// Request carries the inlined audio first, then the prompt.
	require.Len(t, gotReq.Contents, 1)
	parts := gotReq.Contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "audio/mp3", parts[0].InlineData.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(audio), parts[0].InlineData.Data)
	assert.Equal(t, "make a quiz", parts[1].Text)
	assert.InDelta(t, 0.7, gotReq.GenerationConfig.Temperature, 1e-9)
	assert.Equal(t, 4096, gotReq.GenerationConfig.MaxOutputTokens)
}

func TestGeminiAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": 400, "message": "audio too long", "status": "INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	client := NewGeminiClient("test-key", srv.URL, "", srv.Client())
	_, err := client.GenerateFromAudio(context.Background(), writeTempAudio(t, []byte("x")), "p", 0.7, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio too long")
	assert.Contains(t, err.Error(), "INVALID_ARGUMENT")
}

func TestGeminiNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	client := NewGeminiClient("test-key", srv.URL, "", srv.Client())
	_, err := client.GenerateFromAudio(context.Background(), writeTempAudio(t, []byte("x")), "p", 0.7, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGeminiMissingAudioFile(t *testing.T) {
	client := NewGeminiClient("test-key", "http://127.0.0.1:1", "", nil)
	_, err := client.GenerateFromAudio(context.Background(), "/nonexistent/audio.mp3", "p", 0.7, 0)
	require.Error(t, err)
}
