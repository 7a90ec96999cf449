package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int

	GeminiAPIKey  string
	GeminiAPIBase string
	GeminiModel   string

	WhisperAPIKey  string
	WhisperAPIBase string
	WhisperModel   string

	OutputDir    string // transcript artifacts
	QuestionsDir string // generated question artifacts
	AudioDir     string // downloaded audio, kept for regeneration
	KeepAudio    bool

	MaxVideos  int
	StartIndex int // file numbering origin, continues across runs
	Workers    int

	CaptionDelay time.Duration // serial captions path
	WhisperDelay time.Duration // serial audio download path
	SpeedFactor  float64       // audio speed-up before transcription
	SkipSponsors bool

	TranscriptLangs []string // preferred caption languages, in order

	YtDlpPath  string
	FFmpegPath string

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	DatabaseURL string // optional Postgres run catalog

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = page-scrape paths disabled
	LLMClient     *llm.Client    // nil = generation stages disabled
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (quiz, sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
