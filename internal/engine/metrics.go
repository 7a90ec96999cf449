package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	PlaylistRequests    atomic.Int64
	TranscriptRequests  atomic.Int64
	TranscriptErrors    atomic.Int64
	AudioDownloads      atomic.Int64
	AudioDownloadErrors atomic.Int64
	LLMCalls            atomic.Int64
	LLMErrors           atomic.Int64
	GeminiCalls         atomic.Int64
	GeminiErrors        atomic.Int64
	WhisperCalls        atomic.Int64
	WhisperErrors       atomic.Int64
	BatchRuns           atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"playlist_requests":     metrics.PlaylistRequests.Load(),
		"transcript_requests":   metrics.TranscriptRequests.Load(),
		"transcript_errors":     metrics.TranscriptErrors.Load(),
		"audio_downloads":       metrics.AudioDownloads.Load(),
		"audio_download_errors": metrics.AudioDownloadErrors.Load(),
		"llm_calls":             metrics.LLMCalls.Load(),
		"llm_errors":            metrics.LLMErrors.Load(),
		"gemini_calls":          metrics.GeminiCalls.Load(),
		"gemini_errors":         metrics.GeminiErrors.Load(),
		"whisper_calls":         metrics.WhisperCalls.Load(),
		"whisper_errors":        metrics.WhisperErrors.Load(),
		"batch_runs":            metrics.BatchRuns.Load(),
		"cache_hits":            hits,
		"cache_misses":          misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"playlist_requests", "transcript_requests", "transcript_errors",
		"audio_downloads", "audio_download_errors",
		"llm_calls", "llm_errors",
		"gemini_calls", "gemini_errors",
		"whisper_calls", "whisper_errors",
		"batch_runs",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ sub-package.
func IncrPlaylistRequests()    { metrics.PlaylistRequests.Add(1) }
func IncrTranscriptRequests()  { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptErrors()    { metrics.TranscriptErrors.Add(1) }
func IncrAudioDownloads()      { metrics.AudioDownloads.Add(1) }
func IncrAudioDownloadErrors() { metrics.AudioDownloadErrors.Add(1) }
func IncrGeminiCalls()         { metrics.GeminiCalls.Add(1) }
func IncrGeminiErrors()        { metrics.GeminiErrors.Add(1) }
func IncrWhisperCalls()        { metrics.WhisperCalls.Add(1) }
func IncrWhisperErrors()       { metrics.WhisperErrors.Add(1) }

// IncrBatchRuns increments the batch run counter.
func IncrBatchRuns() { metrics.BatchRuns.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
