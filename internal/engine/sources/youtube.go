package sources

import "regexp"

// YouTube implementation is split across four files by responsibility:
//   youtube_innertube.go  — Innertube API types, constants, and low-level HTTP primitives
//   youtube_transcript.go — transcript fetching (page scrape + engagement panel + ANDROID player)
//   youtube_playlist.go   — playlist enumeration (ytInitialData scraping with browse
//                           continuations, yt-dlp flat-playlist fallback)
//   youtube.go            — URL parsing shared by all of the above

var (
	videoIDRE     = regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	bareVideoIDRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

	playlistIDREs = []*regexp.Regexp{
		regexp.MustCompile(`[?&]list=([a-zA-Z0-9_-]+)`),
		regexp.MustCompile(`playlist\?list=([a-zA-Z0-9_-]+)`),
	}
)

// ExtractVideoID pulls the 11-char video ID from any YouTube URL format.
// Bare 11-char IDs pass through unchanged. Returns "" when nothing matches.
func ExtractVideoID(rawURL string) string {
	if bareVideoIDRE.MatchString(rawURL) {
		return rawURL
	}
	if m := videoIDRE.FindStringSubmatch(rawURL); len(m) >= 2 {
		return m[1]
	}
	return ""
}

// ExtractPlaylistID pulls the playlist ID from a YouTube playlist URL.
// Returns "" when the URL carries no list parameter.
func ExtractPlaylistID(rawURL string) string {
	for _, re := range playlistIDREs {
		if m := re.FindStringSubmatch(rawURL); len(m) >= 2 {
			return m[1]
		}
	}
	return ""
}

// WatchURL returns the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// PlaylistURL returns the canonical playlist URL for a playlist ID.
func PlaylistURL(playlistID string) string {
	return "https://www.youtube.com/playlist?list=" + playlistID
}

// ThumbnailURL returns the static max-resolution thumbnail URL for a video.
func ThumbnailURL(videoID string) string {
	return "https://i.ytimg.com/vi/" + videoID + "/maxresdefault.jpg"
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}
