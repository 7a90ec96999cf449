// Package quizserver exposes the quiz pipeline over MCP: playlist
// listing, per-video transcript and question reads, mood labeling, and
// background batch runs with catalog-backed status.
package quizserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_quiz/internal/engine/quiz"
)

// RegisterTools registers all quiz tools on the given MCP server:
// playlist_videos, video_transcript, video_questions, video_mood,
// batch_run, batch_status, quiz_summary. The batch carries the stores
// and clients the tools operate on.
func RegisterTools(server *mcp.Server, b *quiz.Batch) {
	registerPlaylistVideos(server)
	registerVideoTranscript(server, b)
	registerVideoQuestions(server, b)
	registerVideoMood(server, b)
	registerBatchRun(server, b)
	registerBatchStatus(server, b)
	registerQuizSummary(server, b)
}
