// go_quiz — YouTube playlist quiz builder and MCP server.
//
// Turns playlist videos into per-video transcript and quiz question
// artifacts. Three ingestion paths (captions, Whisper audio, one-call
// Gemini audio) feed a two-stage question pipeline plus a mood labeling
// pass. Runs one batch mode from the command line, or serves the whole
// surface as MCP tools:
//
//	go_quiz transcripts <playlist-url>
//	go_quiz whisper <playlist-url>
//	go_quiz audio <playlist-url>
//	go_quiz questions
//	go_quiz moods [title|summary]
//	go_quiz serve              (default)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_quiz/internal/engine"
	"github.com/anatolykoptev/go_quiz/internal/engine/quiz"
	"github.com/anatolykoptev/go_quiz/internal/engine/sources"
	"github.com/anatolykoptev/go_quiz/internal/quizserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8891")
)

func main() {
	initEngine()

	b, err := newBatch()
	if err != nil {
		slog.Error("batch init failed", slog.Any("error", err))
		os.Exit(1)
	}

	mode := "serve"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	err = run(b, mode)
	if b.Catalog != nil {
		b.Catalog.Close()
	}
	if err != nil {
		slog.Error("run failed", slog.String("mode", mode), slog.Any("error", err))
		os.Exit(1)
	}
}

func run(b *quiz.Batch, mode string) error {
	ctx := context.Background()
	switch mode {
	case "serve":
		return serve(b)
	case "transcripts":
		return runPlaylist(ctx, mode, b.FetchTranscripts)
	case "whisper":
		return runPlaylist(ctx, mode, b.TranscribeWithWhisper)
	case "audio":
		return runPlaylist(ctx, mode, b.GenerateFromAudio)
	case "questions":
		_, err := b.GenerateQuestions(ctx)
		return err
	case "moods":
		by := "title"
		if len(os.Args) > 2 {
			by = os.Args[2]
		}
		_, err := b.ClassifyMoods(ctx, by)
		return err
	default:
		return fmt.Errorf("unknown mode %q: want transcripts, whisper, audio, questions, moods, or serve", mode)
	}
}

// runPlaylist resolves the playlist argument shared by the three
// ingestion modes: second CLI argument, falling back to PLAYLIST_URL.
func runPlaylist(ctx context.Context, mode string, f func(context.Context, string) (*engine.RunSummary, error)) error {
	url := playlistArg()
	if url == "" {
		return fmt.Errorf("usage: go_quiz %s <playlist-url> (or set PLAYLIST_URL)", mode)
	}
	_, err := f(ctx, url)
	return err
}

func playlistArg() string {
	if len(os.Args) > 2 {
		return os.Args[2]
	}
	return env.Str("PLAYLIST_URL", "")
}

func serve(b *quiz.Batch) error {
	slog.Info("starting go_quiz",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_quiz",
		Version: version,
	}, nil)

	quizserver.RegisterTools(server, b)
	slog.Info("tools registered", slog.Int("count", 7))

	return mcpserver.Run(server, mcpserver.Config{
		Name:         "go_quiz",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	})
}

func initEngine() {
	c := engine.Config{
		LLMAPIKey:          env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:           env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 0.3),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 16384),

		GeminiAPIKey:  env.Str("GEMINI_API_KEY", ""),
		GeminiAPIBase: env.Str("GEMINI_API_BASE", ""),
		GeminiModel:   env.Str("GEMINI_MODEL", ""),

		WhisperAPIKey:  env.Str("WHISPER_API_KEY", ""),
		WhisperAPIBase: env.Str("WHISPER_API_BASE", ""),
		WhisperModel:   env.Str("WHISPER_MODEL", ""),

		OutputDir:    env.Str("OUTPUT_DIR", "transcripts"),
		QuestionsDir: env.Str("QUESTIONS_DIR", "questions"),
		AudioDir:     env.Str("AUDIO_DIR", "audio"),
		KeepAudio:    envBool("KEEP_AUDIO", true),

		MaxVideos:  env.Int("MAX_VIDEOS", 0),
		StartIndex: env.Int("START_INDEX", 1),
		Workers:    env.Int("WORKERS", 4),

		CaptionDelay: env.Duration("CAPTION_DELAY", 1500*time.Millisecond),
		WhisperDelay: env.Duration("WHISPER_DELAY", 3*time.Second),
		SpeedFactor:  env.Float("SPEED_FACTOR", 2.0),
		SkipSponsors: envBool("SKIP_SPONSORS", true),

		TranscriptLangs: env.List("TRANSCRIPT_LANGS", "en"),

		YtDlpPath:  env.Str("YTDLP_PATH", ""),
		FFmpegPath: env.Str("FFMPEG_PATH", ""),

		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),

		DatabaseURL: env.Str("DATABASE_URL", ""),

		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	bc, err := engine.NewBrowserClient()
	if err != nil {
		slog.Error("browser client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("browser client initialized")
	}

	c.LLMClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}

// newBatch wires the orchestrator from the engine configuration. Audio
// model calls get their own long-timeout client: uploads run minutes,
// not the seconds the page-fetch client allows.
func newBatch() (*quiz.Batch, error) {
	c := engine.Cfg

	transcripts, err := quiz.NewArtifactStore(c.OutputDir)
	if err != nil {
		return nil, err
	}
	questions, err := quiz.NewArtifactStore(c.QuestionsDir)
	if err != nil {
		return nil, err
	}

	audioHTTP := &http.Client{Timeout: 300 * time.Second}
	b := &quiz.Batch{
		Transcripts: transcripts,
		Questions:   questions,
		LLM:         engine.NewChatLLM(c.LLMClient),
		Audio:       sources.NewGeminiClient(c.GeminiAPIKey, c.GeminiAPIBase, c.GeminiModel, audioHTTP),
		Whisper:     sources.NewWhisperClient(c.WhisperAPIKey, c.WhisperAPIBase, c.WhisperModel, audioHTTP),
	}

	// Run catalog: Postgres when DATABASE_URL is set, SQLite otherwise.
	// Either failing downgrades to no run history, never a dead server.
	if c.DatabaseURL != "" {
		cat, err := quiz.OpenPostgresCatalog(context.Background(), c.DatabaseURL)
		if err != nil {
			slog.Warn("postgres catalog init failed", slog.Any("error", err))
		} else {
			b.Catalog = cat
			slog.Info("postgres run catalog ready")
		}
	}
	if b.Catalog == nil {
		cat, err := quiz.OpenCatalog(env.Str("CATALOG_PATH", ""))
		if err != nil {
			slog.Warn("run catalog init failed, runs will not be recorded", slog.Any("error", err))
		} else {
			b.Catalog = cat
		}
	}
	return b, nil
}

func envBool(name string, def bool) bool {
	d := "false"
	if def {
		d = "true"
	}
	return env.Str(name, d) == "true"
}
