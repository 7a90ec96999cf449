package engine

// --- Transcript types ---

// CaptionFragment is one timestamped snippet of spoken text as produced
// by a captions source. Fragments are ordered by Start and typically a
// few words long; text may be empty or a bracketed annotation ("[Music]").
type CaptionFragment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// TranscriptFailReason classifies why a transcript fetch failed.
type TranscriptFailReason string

const (
	TranscriptDisabled    TranscriptFailReason = "disabled"
	TranscriptNotFound    TranscriptFailReason = "not_found"
	TranscriptUnavailable TranscriptFailReason = "unavailable"
	TranscriptOther       TranscriptFailReason = "other"
)

// TranscriptError is a classified transcript fetch failure. The message
// is user-facing; the wrapped error keeps the underlying cause.
type TranscriptError struct {
	Reason TranscriptFailReason
	Err    error
}

func (e *TranscriptError) Error() string {
	switch e.Reason {
	case TranscriptDisabled:
		return "Transcripts are disabled for this video"
	case TranscriptNotFound:
		return "No transcript found for this video"
	case TranscriptUnavailable:
		return "Video is unavailable"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "transcript fetch failed"
}

func (e *TranscriptError) Unwrap() error { return e.Err }

// --- Playlist types ---

// VideoEntry is one playlist item as returned by the playlist lister.
type VideoEntry struct {
	VideoID   string  `json:"video_id"`
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Duration  float64 `json:"duration,omitempty"` // seconds
	Channel   string  `json:"channel,omitempty"`
	Thumbnail string  `json:"thumbnail,omitempty"`
}

// --- Quiz types ---

// Insight is a distilled factual or opinion-based claim extracted from
// a transcript, the basis for one quiz question.
type Insight struct {
	Insight string `json:"insight"`
	Details string `json:"details"`
	Type    string `json:"type"` // factual | opinion
	Topic   string `json:"topic"`
}

// Option is one of four answer choices on a Question.
type Option struct {
	ID      string `json:"id"` // a | b | c | d
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

type Question struct {
	ID          int      `json:"id"`
	Type        string   `json:"type"`       // factual | opinion
	Difficulty  string   `json:"difficulty"` // easy | medium | hard
	Question    string   `json:"question"`
	Options     []Option `json:"options"`
	Explanation string   `json:"explanation"`
}

// --- Artifacts ---

// TranscriptArtifact is the per-video transcript JSON document, written
// immediately after the fetch stage reaches a terminal state.
type TranscriptArtifact struct {
	VideoID             string            `json:"video_id"`
	Title               string            `json:"title"`
	URL                 string            `json:"url"`
	Channel             string            `json:"channel,omitempty"`
	Thumbnail           string            `json:"thumbnail,omitempty"`
	Duration            float64           `json:"duration,omitempty"`
	PlaylistURL         string            `json:"playlist_url,omitempty"`
	TranscriptAvailable bool              `json:"transcript_available"`
	Transcript          []CaptionFragment `json:"transcript,omitempty"`
	Error               string            `json:"error,omitempty"`
	Mood                string            `json:"mood,omitempty"`
}

// QuestionsArtifact is the per-video generated quiz JSON document. The
// two-stage path fills Guest and InsightsExtracted; the audio path fills
// Summary and KeyTakeaways. Mood is added in place by the mood pass.
type QuestionsArtifact struct {
	VideoID           string     `json:"video_id"`
	Title             string     `json:"title"`
	URL               string     `json:"url"`
	Guest             string     `json:"guest,omitempty"`
	Channel           string     `json:"channel,omitempty"`
	Thumbnail         string     `json:"thumbnail,omitempty"`
	Duration          float64    `json:"duration,omitempty"`
	PlaylistURL       string     `json:"playlist_url,omitempty"`
	InsightsExtracted int        `json:"insights_extracted,omitempty"`
	Summary           string     `json:"summary,omitempty"`
	KeyTakeaways      []string   `json:"key_takeaways,omitempty"`
	Questions         []Question `json:"questions"`
	Mood              string     `json:"mood,omitempty"`
}

// --- Run summary ---

// VideoOutcome records one video's result within a run.
type VideoOutcome struct {
	VideoID  string `json:"video_id"`
	Title    string `json:"title"`
	Filename string `json:"filename,omitempty"`
	Success  bool   `json:"success"`
	Skipped  bool   `json:"skipped,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RunSummary aggregates one orchestrator run. The persisted summary is
// cumulative: each run merges the previous summary before writing.
type RunSummary struct {
	TotalVideos    int            `json:"total_videos"`
	Successful     int            `json:"successful"`
	Failed         int            `json:"failed"`
	Skipped        int            `json:"skipped"`
	ElapsedSeconds float64        `json:"elapsed_seconds,omitempty"`
	Videos         []VideoOutcome `json:"videos"`
}

// MergePrev folds a previously persisted summary into s: counters are
// summed, prev's video outcomes keep their position before this run's.
func (s *RunSummary) MergePrev(prev *RunSummary) {
	if prev == nil {
		return
	}
	s.TotalVideos += prev.TotalVideos
	s.Successful += prev.Successful
	s.Failed += prev.Failed
	s.Skipped += prev.Skipped
	s.ElapsedSeconds += prev.ElapsedSeconds
	s.Videos = append(append([]VideoOutcome{}, prev.Videos...), s.Videos...)
}
