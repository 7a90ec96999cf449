package quizserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_quiz/internal/engine"
	"github.com/anatolykoptev/go_quiz/internal/engine/quiz"
)

// batchRunning serializes batches: one at a time, across all modes.
var batchRunning atomic.Bool

func registerBatchRun(server *mcp.Server, b *quiz.Batch) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "batch_run",
		Description: "Start a batch in the background and return immediately. Modes: transcripts (fetch captions for a playlist), whisper (download + transcribe audio), audio (one-call audio quiz generation), questions (two-stage generation over stored transcripts), moods (label question artifacts). Track progress with batch_status. One batch runs at a time.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input BatchRunInput) (*mcp.CallToolResult, BatchRunOutput, error) {
		run, err := batchFunc(b, input)
		if err != nil {
			return nil, BatchRunOutput{}, err
		}

		if !batchRunning.CompareAndSwap(false, true) {
			return nil, BatchRunOutput{}, errors.New("a batch is already running; check batch_status")
		}

		go func() {
			defer batchRunning.Store(false)
			// The request context dies with this call; the batch gets
			// its own.
			sum, err := run(context.Background())
			if err != nil {
				slog.Error("batch run failed",
					slog.String("mode", input.Mode), slog.Any("error", err))
				return
			}
			slog.Info("batch run finished",
				slog.String("mode", input.Mode),
				slog.Int("successful", sum.Successful),
				slog.Int("failed", sum.Failed),
				slog.Int("skipped", sum.Skipped))
		}()

		return nil, BatchRunOutput{
			Mode:    input.Mode,
			Started: true,
			Message: "batch started; poll batch_status for progress",
		}, nil
	})
}

// batchFunc validates the mode and its inputs and returns the batch to
// spawn. Validation failures surface on the tool call, before anything
// starts.
func batchFunc(b *quiz.Batch, input BatchRunInput) (func(context.Context) (*engine.RunSummary, error), error) {
	needsPlaylist := func() error {
		if input.PlaylistURL == "" {
			return fmt.Errorf("playlist_url is required for mode %s", input.Mode)
		}
		return nil
	}

	switch input.Mode {
	case "transcripts":
		if err := needsPlaylist(); err != nil {
			return nil, err
		}
		return func(ctx context.Context) (*engine.RunSummary, error) {
			return b.FetchTranscripts(ctx, input.PlaylistURL)
		}, nil
	case "whisper":
		if err := needsPlaylist(); err != nil {
			return nil, err
		}
		return func(ctx context.Context) (*engine.RunSummary, error) {
			return b.TranscribeWithWhisper(ctx, input.PlaylistURL)
		}, nil
	case "audio":
		if err := needsPlaylist(); err != nil {
			return nil, err
		}
		return func(ctx context.Context) (*engine.RunSummary, error) {
			return b.GenerateFromAudio(ctx, input.PlaylistURL)
		}, nil
	case "questions":
		return b.GenerateQuestions, nil
	case "moods":
		return func(ctx context.Context) (*engine.RunSummary, error) {
			return b.ClassifyMoods(ctx, input.By)
		}, nil
	default:
		return nil, fmt.Errorf("unknown mode %q: want transcripts, whisper, audio, questions, or moods", input.Mode)
	}
}
