package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

// YouTube playlist enumeration — ytInitialData scraping with /browse
// continuations, yt-dlp --flat-playlist fallback.

const (
	ytInitialDataMarker = "var ytInitialData = "
	maxPlaylistPages    = 50 // continuation pages carry 100 items each
)

// --- ytInitialData scraping types ---

type ytPlaylistVideoRenderer struct {
	VideoID string `json:"videoId"`
	Title   struct {
		Runs []struct{ Text string } `json:"runs"`
	} `json:"title"`
	ShortBylineText struct {
		Runs []struct{ Text string } `json:"runs"`
	} `json:"shortBylineText"`
	LengthSeconds string `json:"lengthSeconds"`
	Thumbnail     struct {
		Thumbnails []struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"thumbnail"`
}

type ytContinuationItemRenderer struct {
	ContinuationEndpoint struct {
		ContinuationCommand struct {
			Token string `json:"token"`
		} `json:"continuationCommand"`
	} `json:"continuationEndpoint"`
}

// FetchPlaylistVideos lists the videos of a playlist in playlist order.
// Scrapes the playlist page ytInitialData and follows /browse continuations;
// falls back to yt-dlp --flat-playlist when scraping yields nothing.
// limit <= 0 means no cap.
func FetchPlaylistVideos(ctx context.Context, playlistID string, limit int) ([]engine.VideoEntry, error) {
	engine.IncrPlaylistRequests()

	videos, err := fetchPlaylistViaScrape(ctx, playlistID, limit)
	if err == nil && len(videos) > 0 {
		return videos, nil
	}
	if err != nil {
		slog.Warn("youtube: playlist scrape failed, trying yt-dlp",
			slog.String("playlist", playlistID), slog.Any("err", err))
	}
	return fetchPlaylistViaYtDlp(ctx, playlistID, limit)
}

// fetchPlaylistViaScrape fetches the playlist page HTML, extracts ytInitialData,
// and pages through /browse continuations until the playlist is exhausted.
func fetchPlaylistViaScrape(ctx context.Context, playlistID string, limit int) ([]engine.VideoEntry, error) {
	body, err := fetchPageHTML(ctx, PlaylistURL(playlistID), 8*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("playlist page: %w", err)
	}

	idx := strings.Index(string(body), ytInitialDataMarker)
	if idx < 0 {
		return nil, errors.New("ytInitialData not found in playlist page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialDataMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialData JSON")
	}

	videos, continuation := collectPlaylistItems(jsonData, limit)

	visitorData := generateVisitorData()
	for page := 0; continuation != "" && page < maxPlaylistPages; page++ {
		if limit > 0 && len(videos) >= limit {
			break
		}
		data, err := postInnerTubeWEB(ctx, ytBrowseURL, map[string]any{
			"continuation": continuation,
			"context":      ytWebContext(visitorData),
		}, visitorData)
		if err != nil {
			slog.Warn("youtube: playlist continuation failed",
				slog.String("playlist", playlistID), slog.Int("page", page), slog.Any("err", err))
			break
		}
		remaining := 0
		if limit > 0 {
			remaining = limit - len(videos)
		}
		var more []engine.VideoEntry
		more, continuation = collectPlaylistItems(data, remaining)
		if len(more) == 0 {
			break
		}
		videos = append(videos, more...)
	}

	if limit > 0 && len(videos) > limit {
		videos = videos[:limit]
	}
	return videos, nil
}

// collectPlaylistItems recursively walks playlist JSON for playlistVideoRenderer
// entries and the continuation token for the next page, if any.
func collectPlaylistItems(data []byte, limit int) ([]engine.VideoEntry, string) {
	var results []engine.VideoEntry
	var continuation string
	var walk func(v json.RawMessage)
	walk = func(v json.RawMessage) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err == nil {
			if raw, ok := obj["playlistVideoRenderer"]; ok {
				var pv ytPlaylistVideoRenderer
				if err := json.Unmarshal(raw, &pv); err == nil && pv.VideoID != "" {
					if limit <= 0 || len(results) < limit {
						results = append(results, playlistEntry(pv))
					}
					return
				}
			}
			if raw, ok := obj["continuationItemRenderer"]; ok {
				var cr ytContinuationItemRenderer
				if err := json.Unmarshal(raw, &cr); err == nil {
					if token := cr.ContinuationEndpoint.ContinuationCommand.Token; token != "" {
						continuation = token
						return
					}
				}
			}
			for _, child := range obj {
				walk(child)
			}
			return
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err == nil {
			for _, item := range arr {
				walk(item)
			}
		}
	}
	walk(data)
	return results, continuation
}

func playlistEntry(pv ytPlaylistVideoRenderer) engine.VideoEntry {
	title := ""
	if len(pv.Title.Runs) > 0 {
		title = pv.Title.Runs[0].Text
	}
	channel := ""
	if len(pv.ShortBylineText.Runs) > 0 {
		channel = pv.ShortBylineText.Runs[0].Text
	}
	// Thumbnail variants are ordered smallest to largest.
	thumb := ""
	for _, t := range pv.Thumbnail.Thumbnails {
		thumb = t.URL
	}
	if thumb == "" {
		thumb = ThumbnailURL(pv.VideoID)
	}
	dur, _ := strconv.ParseFloat(pv.LengthSeconds, 64)
	return engine.VideoEntry{
		VideoID:   pv.VideoID,
		Title:     title,
		URL:       WatchURL(pv.VideoID),
		Duration:  dur,
		Channel:   channel,
		Thumbnail: thumb,
	}
}

// --- yt-dlp fallback ---

type ytDlpFlatEntry struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Channel  string  `json:"channel"`
	Uploader string  `json:"uploader"`
}

type ytDlpFlatPlaylist struct {
	Entries []ytDlpFlatEntry `json:"entries"`
}

// parseFlatPlaylist converts yt-dlp --flat-playlist -J output into entries.
func parseFlatPlaylist(data []byte, limit int) ([]engine.VideoEntry, error) {
	var pl ytDlpFlatPlaylist
	if err := json.Unmarshal(data, &pl); err != nil {
		return nil, fmt.Errorf("decode yt-dlp playlist: %w", err)
	}
	videos := make([]engine.VideoEntry, 0, len(pl.Entries))
	for _, e := range pl.Entries {
		if e.ID == "" {
			continue
		}
		channel := e.Channel
		if channel == "" {
			channel = e.Uploader
		}
		videos = append(videos, engine.VideoEntry{
			VideoID:   e.ID,
			Title:     e.Title,
			URL:       WatchURL(e.ID),
			Duration:  e.Duration,
			Channel:   channel,
			Thumbnail: ThumbnailURL(e.ID),
		})
		if limit > 0 && len(videos) >= limit {
			break
		}
	}
	return videos, nil
}

func fetchPlaylistViaYtDlp(ctx context.Context, playlistID string, limit int) ([]engine.VideoEntry, error) {
	out, err := runYtDlp(ctx, "--flat-playlist", "-J", "--no-warnings", PlaylistURL(playlistID))
	if err != nil {
		return nil, err
	}
	videos, err := parseFlatPlaylist(out, limit)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, errors.New("playlist is empty or inaccessible")
	}
	return videos, nil
}
