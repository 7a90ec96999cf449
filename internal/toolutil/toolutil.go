// Package toolutil provides shared helper functions for go_quiz MCP
// tools: video ID resolution and artifact lookup by video ID.
package toolutil

import (
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_quiz/internal/engine/quiz"
	"github.com/anatolykoptev/go_quiz/internal/engine/sources"
)

// ResolveVideoID accepts a watch URL, a short youtu.be URL, or a bare
// 11-character video ID.
func ResolveVideoID(raw string) (string, error) {
	id := sources.ExtractVideoID(strings.TrimSpace(raw))
	if id == "" {
		return "", fmt.Errorf("not a YouTube video URL or ID: %s", raw)
	}
	return id, nil
}

// FindTranscriptArtifact locates a video's transcript artifact.
// Filenames carry an index and title prefix, so lookup matches on the
// trailing video ID.
func FindTranscriptArtifact(store *quiz.ArtifactStore, videoID string) (string, error) {
	return findBySuffix(store, videoID, "_"+videoID+".json")
}

// FindQuestionsArtifact locates a video's questions artifact.
func FindQuestionsArtifact(store *quiz.ArtifactStore, videoID string) (string, error) {
	return findBySuffix(store, videoID, "_"+videoID+"_questions.json")
}

func findBySuffix(store *quiz.ArtifactStore, videoID, suffix string) (string, error) {
	names, err := store.List()
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if strings.HasSuffix(name, suffix) {
			return name, nil
		}
	}
	return "", fmt.Errorf("no artifact for video %s in %s", videoID, store.Dir())
}
