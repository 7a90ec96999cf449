package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

// YouTube transcript fetching.
// Primary:  scrape watch page → ytInitialPlayerResponse → caption XML  (works from any IP)
// Fallback: /next → engagement panel → /get_transcript                 (works from datacenter IPs)
// Fallback: ANDROID Innertube /player → captionTracks                  (works from non-blocked IPs)
//
// Every path returns timestamped fragments so downstream chunk merging
// can break paragraphs on silence gaps.

// getTranscriptRE extracts the continuation token from a raw /next JSON response.
var getTranscriptRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

func extractTranscriptToken(data []byte) (string, error) {
	if m := getTranscriptRE.FindSubmatch(data); len(m) >= 2 {
		// The params value in the /next JSON response is URL-encoded.
		// /get_transcript expects the decoded (raw base64) form.
		decoded, err := url.QueryUnescape(string(m[1]))
		if err != nil {
			return string(m[1]), nil
		}
		return decoded, nil
	}
	return "", errors.New("getTranscriptEndpoint not found in engagement panels")
}

// parseTranscriptSegments converts a /get_transcript JSON response into fragments.
// Segment timing comes in milliseconds as strings.
func parseTranscriptSegments(resp ytGetTranscriptResp) []engine.CaptionFragment {
	var frags []engine.CaptionFragment
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		segs := action.UpdateEngagementPanelAction.Content.
			TranscriptRenderer.Content.
			TranscriptSearchPanelRenderer.Body.
			TranscriptSegmentListRenderer.InitialSegments
		for _, seg := range segs {
			r := seg.TranscriptSegmentRenderer
			if r == nil {
				continue
			}
			var sb strings.Builder
			for _, run := range r.Snippet.Runs {
				if run.Text == "" {
					continue
				}
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(run.Text)
			}
			if sb.Len() == 0 {
				continue
			}
			startMs, _ := strconv.ParseFloat(r.StartMs, 64)
			endMs, _ := strconv.ParseFloat(r.EndMs, 64)
			dur := (endMs - startMs) / 1000
			if dur < 0 {
				dur = 0
			}
			frags = append(frags, engine.CaptionFragment{
				Text:     sb.String(),
				Start:    startMs / 1000,
				Duration: dur,
			})
		}
	}
	return frags
}

// fetchTranscriptViaEngagementPanel fetches a transcript via:
//  1. POST /next → get engagementPanels containing transcript continuation token
//  2. POST /get_transcript with the token → JSON segments
//
// This approach works from datacenter IPs where /player returns LOGIN_REQUIRED.
func fetchTranscriptViaEngagementPanel(ctx context.Context, videoID string) ([]engine.CaptionFragment, error) {
	visitorData := generateVisitorData()

	nextData, err := postInnerTubeWEB(ctx, ytNextURL, map[string]any{
		"videoId": videoID,
		"context": ytWebContext(visitorData),
	}, visitorData)
	if err != nil {
		return nil, fmt.Errorf("/next: %w", err)
	}

	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}

	transcriptData, err := postInnerTubeWEB(ctx, ytGetTranscriptURL, map[string]any{
		"params": token,
		"context": map[string]any{
			"client": ytWebClientCtx{
				ClientName:    "WEB",
				ClientVersion: ytWebVersion,
				VisitorData:   visitorData,
				Hl:            "en",
				Gl:            "US",
			},
		},
	}, visitorData)
	if err != nil {
		return nil, fmt.Errorf("/get_transcript: %w", err)
	}

	var transcriptResp ytGetTranscriptResp
	if err := json.Unmarshal(transcriptData, &transcriptResp); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}

	frags := parseTranscriptSegments(transcriptResp)
	if len(frags) == 0 {
		return nil, &engine.TranscriptError{
			Reason: engine.TranscriptNotFound,
			Err:    errors.New("empty transcript segments"),
		}
	}
	return frags, nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack selects the best usable caption track for the given language preferences.
// Skips tracks that require PoToken, which only resolve in a browser.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return tracks[0], false
	}
	// 1. Manual track in preferred language
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	// 2. Auto-generated track in preferred language
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	// 3. Any English track
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// parseTimedText converts timedtext XML into caption fragments, dropping
// lines that are empty after HTML cleanup.
func parseTimedText(body []byte) ([]engine.CaptionFragment, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}
	frags := make([]engine.CaptionFragment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := engine.CleanHTML(line.Text)
		if text == "" {
			continue
		}
		frags = append(frags, engine.CaptionFragment{
			Text:     text,
			Start:    line.Start,
			Duration: line.Dur,
		})
	}
	return frags, nil
}

// fetchTimedText fetches and parses a YouTube timedtext XML caption URL.
func fetchTimedText(ctx context.Context, baseURL string) ([]engine.CaptionFragment, error) {
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil, err
	}

	frags, err := parseTimedText(body)
	if err != nil {
		return nil, err
	}
	if len(frags) == 0 {
		return nil, &engine.TranscriptError{
			Reason: engine.TranscriptNotFound,
			Err:    errors.New("timedtext contained no caption lines"),
		}
	}
	return frags, nil
}

// classifyPlayerResp maps a player response without usable tracks to a
// transcript failure. Returns nil when caption tracks are present.
func classifyPlayerResp(p *innertubePlayerResp) *engine.TranscriptError {
	if p.PlayabilityStatus != nil && p.PlayabilityStatus.Status == "ERROR" {
		reason := p.PlayabilityStatus.Reason
		if reason == "" {
			reason = "playability ERROR"
		}
		return &engine.TranscriptError{Reason: engine.TranscriptUnavailable, Err: errors.New(reason)}
	}
	if p.Captions == nil {
		return &engine.TranscriptError{Reason: engine.TranscriptDisabled, Err: errors.New("no captions renderer in player response")}
	}
	if len(p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		return &engine.TranscriptError{Reason: engine.TranscriptDisabled, Err: errors.New("empty caption track list")}
	}
	return nil
}

// fetchTranscriptViaPlayer uses the ANDROID Innertube /player endpoint.
// Works from non-blocked (residential/cloud) IP addresses.
func fetchTranscriptViaPlayer(ctx context.Context, videoID string, langs []string) ([]engine.CaptionFragment, error) {
	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ytInnertubeURL+"?prettyPrint=false", bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", ytAndroidUA)
		req.Header.Set("X-Youtube-Client-Name", "3")
		req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}
	defer resp.Body.Close()

	var playerResp innertubePlayerResp
	if err := json.NewDecoder(resp.Body).Decode(&playerResp); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	if terr := classifyPlayerResp(&playerResp); terr != nil {
		return nil, terr
	}
	tracks := playerResp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	track, ok := pickBestTrack(tracks, langs)
	if !ok {
		return nil, &engine.TranscriptError{
			Reason: engine.TranscriptNotFound,
			Err:    errors.New("all caption tracks require PoToken"),
		}
	}
	return fetchTimedText(ctx, track.BaseURL)
}

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// fetchTranscriptViaPageScrape scrapes the YouTube watch page HTML and extracts
// the caption track XML URL from ytInitialPlayerResponse. Works from any IP.
func fetchTranscriptViaPageScrape(ctx context.Context, videoID string, langs []string) ([]engine.CaptionFragment, error) {
	body, err := fetchPageHTML(ctx, WatchURL(videoID), 6*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	// Extract ytInitialPlayerResponse JSON
	idx := strings.Index(string(body), ytInitialPlayerResponseMarker)
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	// Parse captions from player response
	var playerResp innertubePlayerResp
	if err := json.Unmarshal(jsonData, &playerResp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	if terr := classifyPlayerResp(&playerResp); terr != nil {
		return nil, terr
	}
	tracks := playerResp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	track, ok := pickBestTrack(tracks, langs)
	if !ok {
		return nil, &engine.TranscriptError{
			Reason: engine.TranscriptNotFound,
			Err:    errors.New("all tracks require PoToken"),
		}
	}
	return fetchTimedText(ctx, track.BaseURL)
}

// FetchYouTubeTranscript fetches timestamped caption fragments for a YouTube video.
// Primary:  scrape watch page ytInitialPlayerResponse → caption XML (works from any IP)
// Fallback: engagement panel /next → /get_transcript (requires valid session)
// Fallback: ANDROID Innertube /player → captionTracks
//
// On failure the returned error is always a *engine.TranscriptError; the
// most specific classification observed across attempts wins.
func FetchYouTubeTranscript(ctx context.Context, videoID string, langs []string) ([]engine.CaptionFragment, error) {
	engine.IncrTranscriptRequests()

	var classified *engine.TranscriptError
	remember := func(err error) {
		var terr *engine.TranscriptError
		if classified == nil && errors.As(err, &terr) {
			classified = terr
		}
	}

	frags, err := fetchTranscriptViaPageScrape(ctx, videoID, langs)
	if err == nil {
		return frags, nil
	}
	remember(err)
	slog.Warn("youtube: page scrape failed, trying engagement panel",
		slog.String("id", videoID), slog.Any("err", err))

	frags, err = fetchTranscriptViaEngagementPanel(ctx, videoID)
	if err == nil {
		return frags, nil
	}
	remember(err)
	slog.Warn("youtube: engagement panel failed, trying player",
		slog.String("id", videoID), slog.Any("err", err))

	frags, err = fetchTranscriptViaPlayer(ctx, videoID, langs)
	if err == nil {
		return frags, nil
	}
	engine.IncrTranscriptErrors()

	var terr *engine.TranscriptError
	if errors.As(err, &terr) {
		return nil, terr
	}
	if classified != nil {
		return nil, classified
	}
	return nil, &engine.TranscriptError{Reason: engine.TranscriptOther, Err: err}
}
