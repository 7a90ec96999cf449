package quizserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_quiz/internal/engine"
	"github.com/anatolykoptev/go_quiz/internal/engine/quiz"
	"github.com/anatolykoptev/go_quiz/internal/toolutil"
)

func registerVideoMood(server *mcp.Server, b *quiz.Batch) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_mood",
		Description: "Classify one video's quiz artifact into a learning mood category (Foundational Knowledge, Problem Solving, Memory & Recall, ...) and write it back into the artifact. Already classified artifacts are returned as-is. Set by=summary to classify the episode summary instead of the title.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input VideoMoodInput) (*mcp.CallToolResult, *VideoMoodOutput, error) {
		if input.Video == "" {
			return nil, nil, errors.New("video is required")
		}
		if b.Questions == nil {
			return nil, nil, errors.New("questions store not configured")
		}
		if b.LLM == nil {
			return nil, nil, errors.New("LLM service not configured")
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
		if art.Mood != "" {
			return nil, &VideoMoodOutput{VideoID: videoID, Mood: art.Mood, Skipped: true}, nil
		}

		text := art.Title
		if input.By == "summary" {
			text = art.Summary
		}
		if text == "" {
			return nil, nil, errors.New("artifact has no text to classify")
		}

		mood, err := quiz.ClassifyMood(ctx, b.LLM, text, input.By)
		if err != nil {
			return nil, nil, err
		}
		art.Mood = mood
		if err := b.Questions.WriteArtifact(name, art); err != nil {
			return nil, nil, err
		}
		return nil, &VideoMoodOutput{VideoID: videoID, Mood: mood}, nil
	})
}
