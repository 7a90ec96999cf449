package quizserver

import (
	"github.com/anatolykoptev/go_quiz/internal/engine"
	"github.com/anatolykoptev/go_quiz/internal/engine/quiz"
)

type PlaylistVideosInput struct {
	PlaylistURL string `json:"playlist_url" jsonschema:"YouTube playlist URL (e.g. https://www.youtube.com/playlist?list=PL...)"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Maximum number of videos to return (default: all)"`
}

type PlaylistVideosOutput struct {
	PlaylistID  string              `json:"playlist_id"`
	PlaylistURL string              `json:"playlist_url"`
	Count       int                 `json:"count"`
	Videos      []engine.VideoEntry `json:"videos"`
}

type VideoTranscriptInput struct {
	Video      string `json:"video" jsonschema:"YouTube video URL or 11-character video ID"`
	Paragraphs bool   `json:"paragraphs,omitempty" jsonschema:"Return the transcript as timestamped paragraphs instead of raw caption fragments"`
}

type VideoTranscriptOutput struct {
	VideoID    string                   `json:"video_id"`
	Title      string                   `json:"title,omitempty"`
	Source     string                   `json:"source"` // artifact | live
	Available  bool                     `json:"available"`
	Fragments  int                      `json:"fragments"`
	Transcript []engine.CaptionFragment `json:"transcript,omitempty"`
	Paragraphs string                   `json:"paragraphs,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

type VideoQuestionsInput struct {
	Video string `json:"video" jsonschema:"YouTube video URL or 11-character video ID"`
}

type VideoQuestionsOutput struct {
	Filename string `json:"filename"`
	engine.QuestionsArtifact
}

type VideoMoodInput struct {
	Video string `json:"video" jsonschema:"YouTube video URL or 11-character video ID"`
	By    string `json:"by,omitempty" jsonschema:"Classification text source: title (default) or summary"`
}

type VideoMoodOutput struct {
	VideoID string `json:"video_id"`
	Mood    string `json:"mood"`
	Skipped bool   `json:"skipped,omitempty"` // already classified
}

type BatchRunInput struct {
	Mode        string `json:"mode" jsonschema:"Batch mode: transcripts (fetch captions), whisper (transcribe audio), audio (one-call audio quiz), questions (two-stage generation from stored transcripts), moods (label question artifacts)"`
	PlaylistURL string `json:"playlist_url,omitempty" jsonschema:"YouTube playlist URL; required for transcripts, whisper, and audio modes"`
	By          string `json:"by,omitempty" jsonschema:"moods mode only: classification text source, title (default) or summary"`
}

type BatchRunOutput struct {
	Mode    string `json:"mode"`
	Started bool   `json:"started"`
	Message string `json:"message"`
}

type BatchStatusInput struct {
	RunID int64 `json:"run_id,omitempty" jsonschema:"Return per-video outcomes for this run instead of the run list"`
	Limit int   `json:"limit,omitempty" jsonschema:"Maximum runs to return (default 20, max 100)"`
}

type BatchStatusOutput struct {
	Running  bool                  `json:"running"`
	Runs     []quiz.CatalogRun     `json:"runs,omitempty"`
	Outcomes []engine.VideoOutcome `json:"outcomes,omitempty"`
}

type QuizSummaryInput struct{}

type QuizSummaryOutput struct {
	Transcripts *engine.RunSummary `json:"transcripts,omitempty"`
	Questions   *engine.RunSummary `json:"questions,omitempty"`
}
