package sources

import (
	"encoding/json"
	"testing"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

func TestNeedsPoToken(t *testing.T) {
	if !needsPoToken("https://www.youtube.com/api/timedtext?v=x&exp=xpe&lang=en") {
		t.Error("expected PoToken requirement for &exp=xpe URL")
	}
	if needsPoToken("https://www.youtube.com/api/timedtext?v=x&lang=en") {
		t.Error("unexpected PoToken requirement for plain URL")
	}
}

func TestPickBestTrack(t *testing.T) {
	manual := func(lang string) captionTrack {
		return captionTrack{BaseURL: "https://yt/tt?lang=" + lang, LanguageCode: lang}
	}
	auto := func(lang string) captionTrack {
		return captionTrack{BaseURL: "https://yt/tt?lang=" + lang + "&kind=asr", LanguageCode: lang, Kind: "asr"}
	}
	blocked := func(lang string) captionTrack {
		return captionTrack{BaseURL: "https://yt/tt?lang=" + lang + "&exp=xpe", LanguageCode: lang}
	}

	tests := []struct {
		name     string
		tracks   []captionTrack
		langs    []string
		wantLang string
		wantKind string
		wantOK   bool
	}{
		{"manual beats auto", []captionTrack{auto("en"), manual("en")}, []string{"en"}, "en", "", true},
		{"auto when no manual", []captionTrack{auto("en")}, []string{"en"}, "en", "asr", true},
		{"preferred language order", []captionTrack{manual("de"), manual("ru")}, []string{"ru", "de"}, "ru", "", true},
		{"english prefix fallback", []captionTrack{manual("fr"), manual("en-US")}, []string{"ja"}, "en-US", "", true},
		{"first usable fallback", []captionTrack{manual("fr"), manual("de")}, []string{"ja"}, "fr", "", true},
		{"potoken tracks skipped", []captionTrack{blocked("en"), manual("de")}, []string{"en"}, "de", "", true},
		{"all potoken", []captionTrack{blocked("en"), blocked("de")}, []string{"en"}, "en", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickBestTrack(tt.tracks, tt.langs)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			if got.LanguageCode != tt.wantLang || got.Kind != tt.wantKind {
				t.Errorf("picked lang=%q kind=%q, want lang=%q kind=%q",
					got.LanguageCode, got.Kind, tt.wantLang, tt.wantKind)
			}
		})
	}
}

func TestParseTimedText(t *testing.T) {
	// YouTube double-encodes entities: the XML layer yields &#39;, CleanHTML
	// resolves the rest.
	xmlBody := `<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.12" dur="2.5">don&amp;#39;t panic</text>
  <text start="2.62" dur="1.1">   </text>
  <text start="3.72" dur="4.0">so &amp;quot;long&amp;quot; and thanks</text>
</transcript>`

	frags, err := parseTimedText([]byte(xmlBody))
	if err != nil {
		t.Fatalf("parseTimedText: %v", err)
	}
	if len(frags) != 2 {
		t.Fatalf("got %d fragments, want 2 (blank line dropped): %+v", len(frags), frags)
	}
	if frags[0].Text != "don't panic" {
		t.Errorf("entity decoding: got %q", frags[0].Text)
	}
	if frags[0].Start != 0.12 || frags[0].Duration != 2.5 {
		t.Errorf("timing: got start=%v dur=%v", frags[0].Start, frags[0].Duration)
	}
	if frags[1].Text != `so "long" and thanks` {
		t.Errorf("second fragment: got %q", frags[1].Text)
	}
	if frags[1].Start != 3.72 {
		t.Errorf("second start: got %v", frags[1].Start)
	}

	if _, err := parseTimedText([]byte("not xml at all <<<")); err == nil {
		t.Error("expected error for malformed XML")
	}
}

func TestParseTranscriptSegments(t *testing.T) {
	raw := `{
	  "actions": [
	    {"ignoredAction": {}},
	    {"updateEngagementPanelAction": {"content": {"transcriptRenderer": {"content":
	      {"transcriptSearchPanelRenderer": {"body": {"transcriptSegmentListRenderer": {"initialSegments": [
	        {"transcriptSegmentRenderer": {"startMs": "0", "endMs": "2400", "snippet": {"runs": [{"text": "welcome"}, {"text": "back"}]}}},
	        {"transcriptSegmentRenderer": {"startMs": "2400", "endMs": "5000", "snippet": {"runs": [{"text": "to the show"}]}}},
	        {"somethingElse": {}}
	      ]}}}}}}}}
	  ]
	}`
	var resp ytGetTranscriptResp
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	frags := parseTranscriptSegments(resp)
	if len(frags) != 2 {
		t.Fatalf("got %d fragments, want 2: %+v", len(frags), frags)
	}
	if frags[0].Text != "welcome back" {
		t.Errorf("runs not joined: %q", frags[0].Text)
	}
	if frags[0].Start != 0 || frags[0].Duration != 2.4 {
		t.Errorf("first timing: start=%v dur=%v", frags[0].Start, frags[0].Duration)
	}
	if frags[1].Start != 2.4 || frags[1].Duration != 2.6 {
		t.Errorf("second timing: start=%v dur=%v", frags[1].Start, frags[1].Duration)
	}
}

func TestExtractTranscriptToken(t *testing.T) {
	data := []byte(`..."getTranscriptEndpoint":{"params":"CgNhc3IlM0QlM0Q%3D"}...`)
	token, err := extractTranscriptToken(data)
	if err != nil {
		t.Fatalf("extractTranscriptToken: %v", err)
	}
	if token != "CgNhc3IlM0QlM0Q=" {
		t.Errorf("token not URL-decoded: %q", token)
	}

	if _, err := extractTranscriptToken([]byte(`{"no":"panels"}`)); err == nil {
		t.Error("expected error when endpoint missing")
	}
}

func TestClassifyPlayerResp(t *testing.T) {
	parse := func(t *testing.T, raw string) *innertubePlayerResp {
		t.Helper()
		var p innertubePlayerResp
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			t.Fatalf("unmarshal fixture: %v", err)
		}
		return &p
	}

	tests := []struct {
		name       string
		raw        string
		wantReason engine.TranscriptFailReason
		wantNil    bool
	}{
		{
			"unavailable video",
			`{"playabilityStatus": {"status": "ERROR", "reason": "Video unavailable"}}`,
			engine.TranscriptUnavailable, false,
		},
		{
			"captions disabled",
			`{"playabilityStatus": {"status": "OK"}}`,
			engine.TranscriptDisabled, false,
		},
		{
			"empty track list",
			`{"playabilityStatus": {"status": "OK"}, "captions": {"playerCaptionsTracklistRenderer": {"captionTracks": []}}}`,
			engine.TranscriptDisabled, false,
		},
		{
			"tracks present",
			`{"playabilityStatus": {"status": "OK"}, "captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [{"baseUrl": "https://yt/tt", "languageCode": "en"}]}}}`,
			"", true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terr := classifyPlayerResp(parse(t, tt.raw))
			if tt.wantNil {
				if terr != nil {
					t.Fatalf("expected nil, got %v", terr)
				}
				return
			}
			if terr == nil {
				t.Fatal("expected classification, got nil")
			}
			if terr.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", terr.Reason, tt.wantReason)
			}
		})
	}
}

func TestTranscriptErrorMessages(t *testing.T) {
	tests := []struct {
		reason engine.TranscriptFailReason
		want   string
	}{
		{engine.TranscriptDisabled, "Transcripts are disabled for this video"},
		{engine.TranscriptNotFound, "No transcript found for this video"},
		{engine.TranscriptUnavailable, "Video is unavailable"},
	}
	for _, tt := range tests {
		e := &engine.TranscriptError{Reason: tt.reason}
		if got := e.Error(); got != tt.want {
			t.Errorf("reason %q: got %q, want %q", tt.reason, got, tt.want)
		}
	}
}
