package quizserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_quiz/internal/engine"
	"github.com/anatolykoptev/go_quiz/internal/engine/quiz"
	"github.com/anatolykoptev/go_quiz/internal/toolutil"
)

func registerVideoQuestions(server *mcp.Server, b *quiz.Batch) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_questions",
		Description: "Get a video's generated quiz artifact: questions with options and explanations, plus guest, summary, takeaways, and mood when present. Requires a prior batch_run in questions or audio mode.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input VideoQuestionsInput) (*mcp.CallToolResult, *VideoQuestionsOutput, error) {
		if input.Video == "" {
			return nil, nil, errors.New("video is required")
		}
		if b.Questions == nil {
			return nil, nil, errors.New("questions store not configured")
		}
		videoID, err := toolutil.ResolveVideoID(input.Video)
		if err != nil {
			return nil, nil, err
		}

		name, err := toolutil.FindQuestionsArtifact(b.Questions, videoID)
		if err != nil {
			return nil, nil, err
		}
		art, err := quiz.ReadArtifact[engine.QuestionsArtifact](b.Questions, name)
		if err != nil {
			return nil, nil, err
		}
		return nil, &VideoQuestionsOutput{Filename: name, QuestionsArtifact: *art}, nil
	})
}
