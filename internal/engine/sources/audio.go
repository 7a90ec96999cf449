package sources

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

// Audio acquisition via yt-dlp and processing via ffmpeg, both invoked as
// subprocesses. Binary paths come from config so containers can pin them.

// worstAudioFormat prefers tiny non-streaming formats; m3u8/dash formats
// stall on fragment downloads from datacenter IPs.
const worstAudioFormat = "worstaudio[protocol!=m3u8][protocol!=m3u8_native][protocol!=dash]/worstaudio/worst"

func ytDlpBin() string {
	if engine.Cfg.YtDlpPath != "" {
		return engine.Cfg.YtDlpPath
	}
	return "yt-dlp"
}

func ffmpegBin() string {
	if engine.Cfg.FFmpegPath != "" {
		return engine.Cfg.FFmpegPath
	}
	return "ffmpeg"
}

// runYtDlp runs yt-dlp and returns its stdout. Stderr is captured separately
// so -J JSON output stays parseable.
func runYtDlp(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, ytDlpBin(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		// Stderr is capped: it lands in stored outcomes and yt-dlp can
		// produce pages of fragment retry noise.
		return nil, fmt.Errorf("yt-dlp failed: %v\nOutput: %s", err, engine.TruncateAtWord(strings.TrimSpace(stderr.String()), 300))
	}
	return stdout.Bytes(), nil
}

// runFFmpeg runs ffmpeg, capturing combined output for error reporting.
func runFFmpeg(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, ffmpegBin(), args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %v\nOutput: %s", err, engine.TruncateAtWord(strings.TrimSpace(string(output)), 300))
	}
	return nil
}

// downloadAudio downloads a video's audio track as MP3 at the given quality.
// destPath must end in ".mp3"; the extract-audio step supplies the final
// extension, so the output template strips it.
func downloadAudio(ctx context.Context, videoID, destPath, format, quality string) error {
	engine.IncrAudioDownloads()
	tmpl := strings.TrimSuffix(destPath, ".mp3") + ".%(ext)s"
	args := []string{
		"-f", format,
		"-x", "--audio-format", "mp3",
		"--audio-quality", quality,
		"--retries", "5",
		"--fragment-retries", "3",
		"--socket-timeout", "15",
		"--extractor-retries", "3",
		"--no-progress", "--no-warnings",
		"-o", tmpl,
		WatchURL(videoID),
	}
	if _, err := runYtDlp(ctx, args...); err != nil {
		engine.IncrAudioDownloadErrors()
		return err
	}
	if _, err := os.Stat(destPath); err != nil {
		engine.IncrAudioDownloadErrors()
		return fmt.Errorf("yt-dlp produced no output at %s: %w", destPath, err)
	}
	return nil
}

// DownloadAudioCompressed downloads the smallest available audio track and
// recompresses it to 16 kHz mono 32 kbps MP3, the cheapest representation
// multimodal models accept. Skips work when destPath already exists.
func DownloadAudioCompressed(ctx context.Context, videoID, destPath string) error {
	if _, err := os.Stat(destPath); err == nil {
		return nil
	}
	tempPath := strings.TrimSuffix(destPath, ".mp3") + "_temp.mp3"
	if err := downloadAudio(ctx, videoID, tempPath, worstAudioFormat, "64K"); err != nil {
		return err
	}
	defer os.Remove(tempPath)
	return runFFmpeg(ctx, "-y", "-i", tempPath, "-ac", "1", "-ar", "16000", "-b:a", "32k", destPath)
}

// DownloadAudioBest downloads the best available audio track as 128 kbps MP3
// for speech transcription. Skips work when destPath already exists.
func DownloadAudioBest(ctx context.Context, videoID, destPath string) error {
	if _, err := os.Stat(destPath); err == nil {
		return nil
	}
	return downloadAudio(ctx, videoID, destPath, "bestaudio/best", "128K")
}

// atempoChain builds an ffmpeg audio filter for the given tempo multiplier.
// atempo only accepts 0.5 to 2.0, so factors outside that range are chained.
func atempoChain(factor float64) string {
	var stages []string
	f := factor
	for f > 2.0 {
		stages = append(stages, "atempo=2.0")
		f /= 2.0
	}
	for f < 0.5 {
		stages = append(stages, "atempo=0.5")
		f /= 0.5
	}
	stages = append(stages, fmt.Sprintf("atempo=%g", f))
	return strings.Join(stages, ",")
}

// SpeedUpAudio re-encodes audio at the given tempo multiplier. Transcription
// cost scales with duration; segment timestamps must be scaled back by the
// same factor afterwards.
func SpeedUpAudio(ctx context.Context, inPath, outPath string, factor float64) error {
	if factor <= 0 {
		return fmt.Errorf("invalid speed factor %v", factor)
	}
	return runFFmpeg(ctx, "-y", "-i", inPath, "-filter:a", atempoChain(factor), "-b:a", "64k", outPath)
}

// SplitAudio cuts audio into sequential chunks of at most chunkSeconds using
// ffmpeg's stream-copy segment muxer. Returns the chunk paths in order.
func SplitAudio(ctx context.Context, inPath string, chunkSeconds int) ([]string, error) {
	base := strings.TrimSuffix(inPath, filepath.Ext(inPath))
	pattern := base + "_chunk_%03d.mp3"
	if err := runFFmpeg(ctx, "-y", "-i", inPath,
		"-f", "segment", "-segment_time", strconv.Itoa(chunkSeconds),
		"-c", "copy", pattern); err != nil {
		return nil, err
	}
	chunks, err := filepath.Glob(base + "_chunk_*.mp3")
	if err != nil {
		return nil, err
	}
	sort.Strings(chunks)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("segmenting produced no chunks for %s", inPath)
	}
	return chunks, nil
}
