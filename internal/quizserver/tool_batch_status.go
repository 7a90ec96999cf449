package quizserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_quiz/internal/engine/quiz"
)

func registerBatchStatus(server *mcp.Server, b *quiz.Batch) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "batch_status",
		Description: "Show batch run history from the run catalog: mode, counters, elapsed time, start time, newest first. Pass run_id to get that run's per-video outcomes instead. Also reports whether a batch is currently running.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input BatchStatusInput) (*mcp.CallToolResult, BatchStatusOutput, error) {
		if b.Catalog == nil {
			return nil, BatchStatusOutput{}, errors.New("run catalog not configured")
		}
		out := BatchStatusOutput{Running: batchRunning.Load()}

		if input.RunID > 0 {
			outcomes, err := b.Catalog.RunOutcomes(ctx, input.RunID)
			if err != nil {
				return nil, BatchStatusOutput{}, err
			}
			out.Outcomes = outcomes
			return nil, out, nil
		}

		runs, err := b.Catalog.RecentRuns(ctx, input.Limit)
		if err != nil {
			return nil, BatchStatusOutput{}, err
		}
		out.Runs = runs
		return nil, out, nil
	})
}
