package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

// SummaryFile is the cumulative run summary kept beside the artifacts.
// The leading underscore keeps it out of artifact listings.
const SummaryFile = "_summary.json"

// unsafeTitleRe matches everything SafeTitle strips from a title before
// it becomes part of a filename.
var unsafeTitleRe = regexp.MustCompile(`[^\w\s-]`)

// SafeTitle reduces a video title to a filename-safe form: strip
// punctuation, cap at 50 runes, trim.
func SafeTitle(title string) string {
	return strings.TrimSpace(engine.TruncateRunes(unsafeTitleRe.ReplaceAllString(title, ""), 50, ""))
}

// ArtifactName builds the per-video artifact filename. The numeric
// prefix keeps directory listings in playlist order and carries across
// runs via the start index.
func ArtifactName(index int, title, videoID string) string {
	return fmt.Sprintf("%03d_%s_%s.json", index, SafeTitle(title), videoID)
}

// QuestionsNameFor derives the questions artifact filename from its
// transcript artifact's name.
func QuestionsNameFor(transcriptName string) string {
	return strings.TrimSuffix(transcriptName, ".json") + "_questions.json"
}

// ArtifactStore persists per-video JSON artifacts and the cumulative
// run summary in one directory. All names are relative to the store
// directory; callers never build paths themselves.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates the directory if needed.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if dir == "" {
		return nil, errors.New("artifact store: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact store: %w", err)
	}
	return &ArtifactStore{dir: dir}, nil
}

func (s *ArtifactStore) Dir() string { return s.dir }

// Path resolves an artifact name inside the store directory.
func (s *ArtifactStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether an artifact file is present.
func (s *ArtifactStore) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// WriteArtifact marshals v with two-space indentation, matching the
// artifact format consumed by the quiz frontend.
func (s *ArtifactStore) WriteArtifact(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// ReadArtifact loads one artifact. Missing files return fs.ErrNotExist.
func ReadArtifact[T any](s *ArtifactStore, name string) (*T, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return &v, nil
}

// List returns the store's artifact filenames sorted lexically, which
// is playlist order thanks to the numeric prefix. Underscore-prefixed
// bookkeeping files (the summary) are excluded.
func (s *ArtifactStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// MergeSummary folds the previously persisted summary into run and
// writes the result back, keeping the summary cumulative across
// invocations. A corrupt previous summary is dropped with a warning.
func (s *ArtifactStore) MergeSummary(run *engine.RunSummary) error {
	prev, err := ReadArtifact[engine.RunSummary](s, SummaryFile)
	switch {
	case err == nil:
		run.MergePrev(prev)
	case !errors.Is(err, fs.ErrNotExist):
		slog.Warn("previous summary unreadable, starting fresh",
			slog.String("path", s.Path(SummaryFile)),
			slog.Any("error", err))
	}
	return s.WriteArtifact(SummaryFile, run)
}

// ReadSummary loads the cumulative summary. Missing file returns
// fs.ErrNotExist.
func (s *ArtifactStore) ReadSummary() (*engine.RunSummary, error) {
	return ReadArtifact[engine.RunSummary](s, SummaryFile)
}
