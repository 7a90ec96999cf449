package quizserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_quiz/internal/engine"
	"github.com/anatolykoptev/go_quiz/internal/engine/quiz"
	"github.com/anatolykoptev/go_quiz/internal/engine/sources"
	"github.com/anatolykoptev/go_quiz/internal/toolutil"
)

func registerVideoTranscript(server *mcp.Server, b *quiz.Batch) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_transcript",
		Description: "Get a video's transcript. Reads the stored transcript artifact when one exists, otherwise fetches captions live from YouTube. Set paragraphs=true for the merged, timestamped paragraph form used for question generation.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input VideoTranscriptInput) (*mcp.CallToolResult, VideoTranscriptOutput, error) {
		if input.Video == "" {
			return nil, VideoTranscriptOutput{}, errors.New("video is required")
		}
		videoID, err := toolutil.ResolveVideoID(input.Video)
		if err != nil {
			return nil, VideoTranscriptOutput{}, err
		}

		if b.Transcripts != nil {
			if name, err := toolutil.FindTranscriptArtifact(b.Transcripts, videoID); err == nil {
				art, err := quiz.ReadArtifact[engine.TranscriptArtifact](b.Transcripts, name)
				if err != nil {
					return nil, VideoTranscriptOutput{}, err
				}
				return nil, transcriptOutput(videoID, art.Title, "artifact", art.Error, art.Transcript, input.Paragraphs), nil
			}
		}

		cacheKey := engine.CacheKey("video_transcript", videoID, boolKey(input.Paragraphs))
		if out, ok := engine.CacheLoadJSON[VideoTranscriptOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		var frags []engine.CaptionFragment
		err = engine.TrackOperation(ctx, "video_transcript:"+videoID, func(ctx context.Context) error {
			var ferr error
			frags, ferr = sources.FetchYouTubeTranscript(ctx, videoID, engine.Cfg.TranscriptLangs)
			return ferr
		})
		if err != nil {
			return nil, VideoTranscriptOutput{}, err
		}
		out := transcriptOutput(videoID, "", "live", "", frags, input.Paragraphs)
		engine.CacheStoreJSON(ctx, cacheKey, out)
		return nil, out, nil
	})
}

func transcriptOutput(videoID, title, source, fetchErr string, frags []engine.CaptionFragment, paragraphs bool) VideoTranscriptOutput {
	out := VideoTranscriptOutput{
		VideoID:   videoID,
		Title:     title,
		Source:    source,
		Available: len(frags) > 0,
		Fragments: len(frags),
		Error:     fetchErr,
	}
	if paragraphs {
		out.Paragraphs = quiz.Reassemble(frags, engine.Cfg.SkipSponsors)
	} else {
		out.Transcript = frags
	}
	return out
}

func boolKey(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
