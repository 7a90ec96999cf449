package quizserver

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_quiz/internal/engine"
	"github.com/anatolykoptev/go_quiz/internal/engine/quiz"
)

func registerQuizSummary(server *mcp.Server, b *quiz.Batch) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "quiz_summary",
		Description: "Read the cumulative run summaries: total, successful, failed, and skipped counts with per-video outcomes, for both the transcript store and the questions store. Summaries accumulate across batch runs.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ QuizSummaryInput) (*mcp.CallToolResult, QuizSummaryOutput, error) {
		var out QuizSummaryOutput
		out.Transcripts = readSummary(b.Transcripts)
		out.Questions = readSummary(b.Questions)
		if out.Transcripts == nil && out.Questions == nil {
			return nil, QuizSummaryOutput{}, errors.New("no run summaries yet; run a batch first")
		}
		return nil, out, nil
	})
}

func readSummary(store *quiz.ArtifactStore) *engine.RunSummary {
	if store == nil {
		return nil
	}
	sum, err := store.ReadSummary()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("summary unreadable", slog.String("dir", store.Dir()), slog.Any("error", err))
		}
		return nil
	}
	return sum
}
