package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_quiz/internal/engine"
	"github.com/anatolykoptev/go_quiz/internal/engine/sources"
)

// AudioTranscriber is the speech-to-text boundary for the Whisper path.
// *sources.WhisperClient satisfies it.
type AudioTranscriber interface {
	Transcribe(ctx context.Context, audioPath string) (*sources.WhisperResult, error)
}

// whisperChunkSeconds is the segment length for oversized audio files.
// Ten minutes of 2x mono mp3 stays well under the upload cap.
const whisperChunkSeconds = 600

// Batch wires the orchestrators' collaborators. Tuning (dirs, delays,
// workers, limits) comes from engine.Cfg; collaborators are injected
// here so tests can substitute doubles. A nil Catalog disables run
// recording; a nil service makes the paths that need it fail fast.
type Batch struct {
	Transcripts *ArtifactStore    // transcript artifacts
	Questions   *ArtifactStore    // question artifacts
	LLM         engine.LLMService // two-stage generation + mood pass
	Audio       AudioLLM          // one-call audio question path
	Whisper     AudioTranscriber  // audio transcription path
	Catalog     Catalog
}

// resolvePlaylist turns a playlist URL into its video list, failing
// fast on the configuration-class errors that should abort a run
// before any per-video work.
func resolvePlaylist(ctx context.Context, playlistURL string) (string, []engine.VideoEntry, error) {
	playlistID := sources.ExtractPlaylistID(playlistURL)
	if playlistID == "" {
		return "", nil, fmt.Errorf("invalid playlist URL: %s", playlistURL)
	}
	limit := engine.Cfg.MaxVideos
	videos, err := sources.FetchPlaylistVideos(ctx, playlistID, limit)
	if err != nil {
		return "", nil, fmt.Errorf("list playlist %s: %w", playlistID, err)
	}
	if len(videos) == 0 {
		return "", nil, fmt.Errorf("no videos found in playlist %s", playlistID)
	}
	return playlistID, videos, nil
}

// finishRun stamps elapsed time, records the run in the catalog, and
// merges the cumulative summary file when store is non-nil. The catalog
// row keeps this run's counters; the returned summary is cumulative.
func (b *Batch) finishRun(ctx context.Context, mode string, startedAt time.Time, store *ArtifactStore, sum *engine.RunSummary) (*engine.RunSummary, error) {
	sum.ElapsedSeconds = math.Round(time.Since(startedAt).Seconds()*10) / 10

	if b.Catalog != nil {
		if _, err := b.Catalog.RecordRun(ctx, mode, startedAt, sum); err != nil {
			slog.Warn("run catalog record failed", slog.String("mode", mode), slog.Any("error", err))
		}
	}
	if store != nil {
		if err := store.MergeSummary(sum); err != nil {
			return nil, fmt.Errorf("persist summary: %w", err)
		}
	}

	slog.Info("batch complete",
		slog.String("mode", mode),
		slog.Int("successful", sum.Successful),
		slog.Int("failed", sum.Failed),
		slog.Int("skipped", sum.Skipped),
		slog.Float64("elapsed_seconds", sum.ElapsedSeconds))
	return sum, nil
}

// --- Captions path ---

// FetchTranscripts lists a playlist and fetches captions for every
// video serially, writing one transcript artifact per video the moment
// its fetch reaches a terminal state. Videos with an existing artifact
// are skipped without any network traffic.
func (b *Batch) FetchTranscripts(ctx context.Context, playlistURL string) (*engine.RunSummary, error) {
	if b.Transcripts == nil {
		return nil, errors.New("transcript store not configured")
	}
	engine.IncrBatchRuns()
	start := time.Now()

	playlistID, videos, err := resolvePlaylist(ctx, playlistURL)
	if err != nil {
		return nil, err
	}

	sum := b.fetchTranscriptVideos(ctx, sources.PlaylistURL(playlistID), videos)
	return b.finishRun(ctx, "transcripts", start, b.Transcripts, sum)
}

func (b *Batch) fetchTranscriptVideos(ctx context.Context, playlistURL string, videos []engine.VideoEntry) *engine.RunSummary {
	sum := &engine.RunSummary{TotalVideos: len(videos)}
	progress := engine.NewProgress()
	defer progress.Close()

	delay := engine.Cfg.CaptionDelay
	if delay <= 0 {
		delay = 1500 * time.Millisecond
	}
	limiter := rate.NewLimiter(rate.Every(delay), 1)

	for i, video := range videos {
		if video.VideoID == "" {
			continue
		}
		name := ArtifactName(engine.Cfg.StartIndex+i, video.Title, video.VideoID)
		outcome := engine.VideoOutcome{VideoID: video.VideoID, Title: video.Title, Filename: name}

		if b.Transcripts.Exists(name) {
			outcome.Success, outcome.Skipped = true, true
			sum.Skipped++
			sum.Videos = append(sum.Videos, outcome)
			progress.Info("transcript exists, skipping",
				slog.String("video", video.VideoID), slog.String("file", name))
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			outcome.Error = err.Error()
			sum.Failed++
			sum.Videos = append(sum.Videos, outcome)
			continue
		}

		frags, err := sources.FetchYouTubeTranscript(ctx, video.VideoID, engine.Cfg.TranscriptLangs)
		art := engine.TranscriptArtifact{
			VideoID:             video.VideoID,
			Title:               video.Title,
			URL:                 video.URL,
			Channel:             video.Channel,
			Thumbnail:           video.Thumbnail,
			Duration:            video.Duration,
			PlaylistURL:         playlistURL,
			TranscriptAvailable: err == nil,
		}
		if err != nil {
			art.Error = err.Error()
		} else {
			art.Transcript = frags
		}
		if werr := b.Transcripts.WriteArtifact(name, art); werr != nil {
			err = werr
		}

		if err != nil {
			outcome.Error = err.Error()
			sum.Failed++
			progress.Warn("transcript failed",
				slog.String("video", video.VideoID), slog.Any("error", err))
		} else {
			outcome.Success = true
			sum.Successful++
			progress.Info("transcript saved",
				slog.String("video", video.VideoID),
				slog.String("file", name),
				slog.Int("fragments", len(frags)))
		}
		sum.Videos = append(sum.Videos, outcome)
	}
	return sum
}

// --- Whisper path ---

// TranscribeWithWhisper downloads each video's audio, speeds it up, and
// transcribes it, producing the same transcript artifacts as the
// captions path. Used for playlists whose captions are disabled or bot
// walled. Audio is staged in a temp dir and removed per video; a video
// is skipped only when its existing artifact already holds a
// transcript, so failed downloads get retried on the next run.
func (b *Batch) TranscribeWithWhisper(ctx context.Context, playlistURL string) (*engine.RunSummary, error) {
	if b.Transcripts == nil {
		return nil, errors.New("transcript store not configured")
	}
	if b.Whisper == nil {
		return nil, errors.New("whisper transcriber not configured")
	}
	engine.IncrBatchRuns()
	start := time.Now()

	playlistID, videos, err := resolvePlaylist(ctx, playlistURL)
	if err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "whisper_audio_")
	if err != nil {
		return nil, fmt.Errorf("audio temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	sum := b.whisperVideos(ctx, sources.PlaylistURL(playlistID), tmpDir, videos)
	return b.finishRun(ctx, "whisper", start, b.Transcripts, sum)
}

func (b *Batch) whisperVideos(ctx context.Context, playlistURL, tmpDir string, videos []engine.VideoEntry) *engine.RunSummary {
	sum := &engine.RunSummary{TotalVideos: len(videos)}
	progress := engine.NewProgress()
	defer progress.Close()

	delay := engine.Cfg.WhisperDelay
	if delay <= 0 {
		delay = 3 * time.Second
	}
	limiter := rate.NewLimiter(rate.Every(delay), 1)

	for i, video := range videos {
		if video.VideoID == "" {
			continue
		}
		name := ArtifactName(engine.Cfg.StartIndex+i, video.Title, video.VideoID)
		outcome := engine.VideoOutcome{VideoID: video.VideoID, Title: video.Title, Filename: name}

		if existing, err := ReadArtifact[engine.TranscriptArtifact](b.Transcripts, name); err == nil &&
			existing.TranscriptAvailable && len(existing.Transcript) > 0 {
			outcome.Success, outcome.Skipped = true, true
			sum.Skipped++
			sum.Videos = append(sum.Videos, outcome)
			progress.Info("transcript exists, skipping",
				slog.String("video", video.VideoID), slog.String("file", name))
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			outcome.Error = err.Error()
			sum.Failed++
			sum.Videos = append(sum.Videos, outcome)
			continue
		}

		frags, err := b.whisperOne(ctx, tmpDir, video.VideoID, progress)
		art := engine.TranscriptArtifact{
			VideoID:             video.VideoID,
			Title:               video.Title,
			URL:                 video.URL,
			Channel:             video.Channel,
			Thumbnail:           video.Thumbnail,
			Duration:            video.Duration,
			PlaylistURL:         playlistURL,
			TranscriptAvailable: err == nil,
		}
		if err != nil {
			art.Error = err.Error()
		} else {
			art.Transcript = frags
		}
		if werr := b.Transcripts.WriteArtifact(name, art); werr != nil {
			err = werr
		}

		if err != nil {
			outcome.Error = err.Error()
			sum.Failed++
			progress.Warn("whisper transcription failed",
				slog.String("video", video.VideoID), slog.Any("error", err))
		} else {
			outcome.Success = true
			sum.Successful++
			progress.Info("transcript saved",
				slog.String("video", video.VideoID),
				slog.String("file", name),
				slog.Int("fragments", len(frags)))
		}
		sum.Videos = append(sum.Videos, outcome)
	}
	return sum
}

// whisperOne runs the download, speed-up, transcribe sequence for one
// video. Staged audio is removed before returning.
func (b *Batch) whisperOne(ctx context.Context, tmpDir, videoID string, progress *engine.Progress) ([]engine.CaptionFragment, error) {
	speed := engine.Cfg.SpeedFactor
	if speed <= 0 {
		speed = 2.0
	}

	audioPath := filepath.Join(tmpDir, videoID+".mp3")
	spedPath := filepath.Join(tmpDir, videoID+"_fast.mp3")
	defer os.Remove(audioPath)
	defer os.Remove(spedPath)

	if err := sources.DownloadAudioBest(ctx, videoID, audioPath); err != nil {
		return nil, fmt.Errorf("audio download failed: %w", err)
	}
	progress.Info("audio downloaded, speeding up",
		slog.String("video", videoID), slog.Float64("factor", speed))
	if err := sources.SpeedUpAudio(ctx, audioPath, spedPath, speed); err != nil {
		return nil, fmt.Errorf("audio speed-up failed: %w", err)
	}
	return b.transcribeAudioFile(ctx, spedPath, speed, progress)
}

// transcribeAudioFile transcribes sped-up audio, splitting files over
// the Whisper upload cap into fixed-length chunks. Timestamps are
// mapped back to original-audio time: chunk offsets accumulate in
// sped-up seconds from each chunk's reported duration, then offset and
// segment times scale by the speed factor together.
func (b *Batch) transcribeAudioFile(ctx context.Context, path string, speed float64, progress *engine.Progress) ([]engine.CaptionFragment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() <= sources.WhisperMaxFileBytes {
		res, err := b.Whisper.Transcribe(ctx, path)
		if err != nil {
			return nil, err
		}
		return rescaleSegments(res.Segments, 0, speed), nil
	}

	chunks, err := sources.SplitAudio(ctx, path, whisperChunkSeconds)
	if err != nil {
		return nil, fmt.Errorf("split oversized audio: %w", err)
	}
	defer func() {
		for _, c := range chunks {
			os.Remove(c)
		}
	}()
	progress.Info("audio over upload cap, transcribing in chunks",
		slog.String("file", filepath.Base(path)), slog.Int("chunks", len(chunks)))

	var frags []engine.CaptionFragment
	offset := 0.0
	for _, chunk := range chunks {
		res, err := b.Whisper.Transcribe(ctx, chunk)
		if err != nil {
			return nil, err
		}
		frags = append(frags, rescaleSegments(res.Segments, offset, speed)...)
		offset += res.Duration
	}
	return frags, nil
}

// rescaleSegments converts Whisper segments to caption fragments in
// original-audio time.
func rescaleSegments(segs []sources.WhisperSegment, offset, speed float64) []engine.CaptionFragment {
	frags := make([]engine.CaptionFragment, 0, len(segs))
	for _, s := range segs {
		frags = append(frags, engine.CaptionFragment{
			Text:     strings.TrimSpace(s.Text),
			Start:    (offset + s.Start) * speed,
			Duration: (s.End - s.Start) * speed,
		})
	}
	return frags
}

// --- Audio question path ---

// GenerateFromAudio downloads compressed audio for every playlist video
// and asks the audio model for summary, takeaways, and questions in one
// call per video, on a bounded worker pool. Downloaded audio persists
// in the audio dir and is reused on regeneration unless KeepAudio is
// off. Videos with an existing questions artifact are skipped without
// any network traffic.
func (b *Batch) GenerateFromAudio(ctx context.Context, playlistURL string) (*engine.RunSummary, error) {
	if b.Questions == nil {
		return nil, errors.New("questions store not configured")
	}
	if b.Audio == nil {
		return nil, errors.New("audio generation service not configured")
	}
	audioDir := engine.Cfg.AudioDir
	if audioDir == "" {
		return nil, errors.New("audio directory not configured")
	}
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		return nil, fmt.Errorf("audio dir: %w", err)
	}
	engine.IncrBatchRuns()
	start := time.Now()

	playlistID, videos, err := resolvePlaylist(ctx, playlistURL)
	if err != nil {
		return nil, err
	}

	sum := b.audioQuizVideos(ctx, sources.PlaylistURL(playlistID), audioDir, videos)
	return b.finishRun(ctx, "audio", start, b.Questions, sum)
}

func (b *Batch) audioQuizVideos(ctx context.Context, playlistURL, audioDir string, videos []engine.VideoEntry) *engine.RunSummary {
	sum := &engine.RunSummary{TotalVideos: len(videos)}
	progress := engine.NewProgress()
	defer progress.Close()

	jobs := make([]func(context.Context) (engine.VideoOutcome, error), 0, len(videos))
	for i, video := range videos {
		if video.VideoID == "" {
			continue
		}
		fileIndex := engine.Cfg.StartIndex + i
		jobs = append(jobs, func(ctx context.Context) (engine.VideoOutcome, error) {
			return b.audioQuizOne(ctx, playlistURL, audioDir, fileIndex, video, progress), nil
		})
	}

	for res := range engine.RunPool(ctx, engine.Cfg.Workers, jobs) {
		outcome := res.Value
		if res.Err != nil {
			outcome.Success = false
			outcome.Error = res.Err.Error()
		}
		switch {
		case outcome.Skipped:
			sum.Skipped++
		case outcome.Success:
			sum.Successful++
		default:
			sum.Failed++
		}
		sum.Videos = append(sum.Videos, outcome)
	}
	return sum
}

// audioQuizOne processes a single video on the pool: reuse or download
// compressed audio, generate, persist. Never returns an error; every
// failure becomes a recorded outcome.
func (b *Batch) audioQuizOne(ctx context.Context, playlistURL, audioDir string, fileIndex int, video engine.VideoEntry, progress *engine.Progress) engine.VideoOutcome {
	name := QuestionsNameFor(ArtifactName(fileIndex, video.Title, video.VideoID))
	outcome := engine.VideoOutcome{VideoID: video.VideoID, Title: video.Title, Filename: name}

	if b.Questions.Exists(name) {
		outcome.Success, outcome.Skipped = true, true
		progress.Info("questions exist, skipping",
			slog.String("video", video.VideoID), slog.String("file", name))
		return outcome
	}

	audioPath := filepath.Join(audioDir, video.VideoID+".mp3")
	if err := sources.DownloadAudioCompressed(ctx, video.VideoID, audioPath); err != nil {
		outcome.Error = fmt.Sprintf("audio download failed: %v", err)
		progress.Warn("audio download failed",
			slog.String("video", video.VideoID), slog.Any("error", err))
		return outcome
	}
	if !engine.Cfg.KeepAudio {
		defer os.Remove(audioPath)
	}

	result, err := GenerateQuizFromAudio(ctx, b.Audio, audioPath, video.Title)
	if err != nil {
		outcome.Error = err.Error()
		progress.Warn("audio generation failed",
			slog.String("video", video.VideoID), slog.Any("error", err))
		return outcome
	}

	art := engine.QuestionsArtifact{
		VideoID:      video.VideoID,
		Title:        video.Title,
		URL:          video.URL,
		Channel:      video.Channel,
		Thumbnail:    video.Thumbnail,
		Duration:     video.Duration,
		PlaylistURL:  playlistURL,
		Summary:      result.Summary,
		KeyTakeaways: result.KeyTakeaways,
		Questions:    result.Questions,
	}
	if err := b.Questions.WriteArtifact(name, art); err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Success = true
	progress.Info("questions saved",
		slog.String("video", video.VideoID),
		slog.String("file", name),
		slog.Int("questions", len(result.Questions)))
	return outcome
}

// --- Two-stage generation path ---

// GenerateQuestions runs insight extraction and question generation
// over every stored transcript artifact, writing one questions artifact
// per transcript. Videos without a transcript or whose extraction finds
// nothing are recorded as skipped; a question-stage parse failure still
// writes the artifact with zero questions.
func (b *Batch) GenerateQuestions(ctx context.Context) (*engine.RunSummary, error) {
	if b.Transcripts == nil || b.Questions == nil {
		return nil, errors.New("artifact stores not configured")
	}
	if b.LLM == nil {
		return nil, errors.New("LLM service not configured")
	}
	engine.IncrBatchRuns()
	start := time.Now()

	files, err := b.Transcripts.List()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no transcript artifacts in %s", b.Transcripts.Dir())
	}

	sum := &engine.RunSummary{TotalVideos: len(files)}
	progress := engine.NewProgress()
	defer progress.Close()

	for _, name := range files {
		outcome := b.questionsForTranscript(ctx, name, progress)
		switch {
		case outcome.Skipped:
			sum.Skipped++
		case outcome.Success:
			sum.Successful++
		default:
			sum.Failed++
		}
		sum.Videos = append(sum.Videos, outcome)
	}
	return b.finishRun(ctx, "questions", start, b.Questions, sum)
}

// questionsForTranscript runs the two-stage pipeline for one stored
// transcript artifact.
func (b *Batch) questionsForTranscript(ctx context.Context, name string, progress *engine.Progress) engine.VideoOutcome {
	outcome := engine.VideoOutcome{Filename: name}

	art, err := ReadArtifact[engine.TranscriptArtifact](b.Transcripts, name)
	if err != nil {
		outcome.Error = err.Error()
		progress.Warn("transcript artifact unreadable",
			slog.String("file", name), slog.Any("error", err))
		return outcome
	}
	outcome.VideoID = art.VideoID
	outcome.Title = art.Title

	if len(art.Transcript) == 0 {
		outcome.Skipped = true
		outcome.Error = "no transcript available"
		progress.Info("no transcript, skipping", slog.String("file", name))
		return outcome
	}

	guestName, hasGuest := ExtractGuest(art.Title)
	promptGuest := guestName
	if !hasGuest {
		promptGuest = SoloEpisodeGuest
	}

	merged := Reassemble(art.Transcript, engine.Cfg.SkipSponsors)
	insights, err := ExtractInsights(ctx, b.LLM, art.Title, promptGuest, merged)
	if err != nil {
		outcome.Error = err.Error()
		progress.Warn("insight extraction failed",
			slog.String("video", art.VideoID), slog.Any("error", err))
		return outcome
	}
	if len(insights) == 0 {
		outcome.Skipped = true
		outcome.Error = "no insights extracted"
		progress.Warn("no insights extracted, skipping question generation",
			slog.String("video", art.VideoID))
		return outcome
	}

	questions, err := GenerateQuestions(ctx, b.LLM, art.Title, promptGuest, insights)
	var parseErr *ParseError
	if err != nil && !errors.As(err, &parseErr) {
		outcome.Error = err.Error()
		progress.Warn("question generation failed",
			slog.String("video", art.VideoID), slog.Any("error", err))
		return outcome
	}

	qname := QuestionsNameFor(name)
	outcome.Filename = qname
	qart := engine.QuestionsArtifact{
		VideoID:           art.VideoID,
		Title:             art.Title,
		URL:               art.URL,
		Guest:             guestName,
		Duration:          art.Duration,
		InsightsExtracted: len(insights),
		Questions:         questions,
	}
	if werr := b.Questions.WriteArtifact(qname, qart); werr != nil {
		outcome.Error = werr.Error()
		return outcome
	}

	if parseErr != nil {
		outcome.Error = parseErr.Error()
		progress.Warn("questions response unparseable, artifact has zero questions",
			slog.String("video", art.VideoID), slog.Any("error", parseErr))
		return outcome
	}

	outcome.Success = true
	progress.Info("questions saved",
		slog.String("video", art.VideoID),
		slog.String("file", qname),
		slog.Int("insights", len(insights)),
		slog.Int("questions", len(questions)))
	return outcome
}

// --- Mood pass ---

// ClassifyMoods labels every stored questions artifact with a mood
// category, writing each artifact back in place. by selects the text:
// "summary" uses the episode summary, anything else the title. Already
// labeled artifacts are skipped. The run is recorded in the catalog but
// never merged into the summary file: mood mutates artifacts, it does
// not produce them.
func (b *Batch) ClassifyMoods(ctx context.Context, by string) (*engine.RunSummary, error) {
	if b.Questions == nil {
		return nil, errors.New("questions store not configured")
	}
	if b.LLM == nil {
		return nil, errors.New("LLM service not configured")
	}
	if by != "summary" {
		by = "title"
	}
	engine.IncrBatchRuns()
	start := time.Now()

	files, err := b.Questions.List()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no question artifacts in %s", b.Questions.Dir())
	}

	sum := &engine.RunSummary{TotalVideos: len(files)}
	progress := engine.NewProgress()
	defer progress.Close()

	for _, name := range files {
		outcome := b.classifyOne(ctx, name, by, progress)
		switch {
		case outcome.Skipped:
			sum.Skipped++
		case outcome.Success:
			sum.Successful++
		default:
			sum.Failed++
		}
		sum.Videos = append(sum.Videos, outcome)
	}
	return b.finishRun(ctx, "moods", start, nil, sum)
}

func (b *Batch) classifyOne(ctx context.Context, name, by string, progress *engine.Progress) engine.VideoOutcome {
	outcome := engine.VideoOutcome{Filename: name}

	art, err := ReadArtifact[engine.QuestionsArtifact](b.Questions, name)
	if err != nil {
		outcome.Error = err.Error()
		progress.Warn("questions artifact unreadable",
			slog.String("file", name), slog.Any("error", err))
		return outcome
	}
	outcome.VideoID = art.VideoID
	outcome.Title = art.Title

	if art.Mood != "" {
		outcome.Success, outcome.Skipped = true, true
		progress.Info("already classified, skipping",
			slog.String("video", art.VideoID), slog.String("mood", art.Mood))
		return outcome
	}
	text := art.Title
	if by == "summary" {
		text = art.Summary
	}
	if text == "" {
		outcome.Skipped = true
		outcome.Error = "no " + by + " to classify"
		progress.Info("nothing to classify, skipping", slog.String("file", name))
		return outcome
	}

	mood, err := ClassifyMood(ctx, b.LLM, text, by)
	if err != nil {
		outcome.Error = err.Error()
		progress.Warn("mood classification failed",
			slog.String("video", art.VideoID), slog.Any("error", err))
		return outcome
	}

	art.Mood = mood
	if err := b.Questions.WriteArtifact(name, art); err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Success = true
	progress.Info("mood saved",
		slog.String("video", art.VideoID), slog.String("mood", mood))
	return outcome
}
