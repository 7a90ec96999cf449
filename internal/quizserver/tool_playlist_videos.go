package quizserver

import (
	"context"
	"errors"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_quiz/internal/engine"
	"github.com/anatolykoptev/go_quiz/internal/engine/sources"
)

func registerPlaylistVideos(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "playlist_videos",
		Description: "List the videos of a YouTube playlist in order: video ID, title, URL, duration, channel, thumbnail. Use before batch_run to preview what a batch would process.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input PlaylistVideosInput) (*mcp.CallToolResult, PlaylistVideosOutput, error) {
		if input.PlaylistURL == "" {
			return nil, PlaylistVideosOutput{}, errors.New("playlist_url is required")
		}
		playlistID := sources.ExtractPlaylistID(input.PlaylistURL)
		if playlistID == "" {
			return nil, PlaylistVideosOutput{}, errors.New("not a YouTube playlist URL: " + input.PlaylistURL)
		}

		cacheKey := engine.CacheKey("playlist_videos", playlistID, strconv.Itoa(input.Limit))
		if out, ok := engine.CacheLoadJSON[PlaylistVideosOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		videos, err := sources.FetchPlaylistVideos(ctx, playlistID, input.Limit)
		if err != nil {
			return nil, PlaylistVideosOutput{}, err
		}

		out := PlaylistVideosOutput{
			PlaylistID:  playlistID,
			PlaylistURL: sources.PlaylistURL(playlistID),
			Count:       len(videos),
			Videos:      videos,
		}
		engine.CacheStoreJSON(ctx, cacheKey, out)
		return nil, out, nil
	})
}
