package quiz

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_quiz/internal/engine"
)

func TestSafeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"How to Improve Memory | Dr. Charan Ranganath", "How to Improve Memory  Dr Charan Ranganath"},
		{"Sleep & Light: What Matters?", "Sleep  Light What Matters"},
		{"plain title", "plain title"},
		{"hyphen-stays_and_underscore", "hyphen-stays_and_underscore"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeTitle(tt.in), "SafeTitle(%q)", tt.in)
	}

	long := SafeTitle("The Complete Guide to Everything About Neuroscience and Then Some More Words")
	assert.LessOrEqual(t, len([]rune(long)), 50)
}

func TestArtifactName(t *testing.T) {
	got := ArtifactName(7, "Master Your Sleep!", "dQw4w9WgXcQ")
	assert.Equal(t, "007_Master Your Sleep_dQw4w9WgXcQ.json", got)
}

func TestQuestionsNameFor(t *testing.T) {
	assert.Equal(t, "001_Title_abc_questions.json", QuestionsNameFor("001_Title_abc.json"))
}

func TestArtifactStoreRoundTrip(t *testing.T) {
	store, err := NewArtifactStore(filepath.Join(t.TempDir(), "transcripts"))
	require.NoError(t, err)

	name := ArtifactName(1, "Test Video", "vid01")
	art := engine.TranscriptArtifact{
		VideoID:             "vid01",
		Title:               "Test Video",
		TranscriptAvailable: true,
		Transcript:          []engine.CaptionFragment{{Text: "hello", Start: 0.5, Duration: 1.2}},
	}
	require.NoError(t, store.WriteArtifact(name, art))
	assert.True(t, store.Exists(name))

	got, err := ReadArtifact[engine.TranscriptArtifact](store, name)
	require.NoError(t, err)
	assert.Equal(t, art, *got)

	_, err = ReadArtifact[engine.TranscriptArtifact](store, "missing.json")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestArtifactStoreList(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.WriteArtifact("002_b_v2.json", struct{}{}))
	require.NoError(t, store.WriteArtifact("001_a_v1.json", struct{}{}))
	require.NoError(t, store.WriteArtifact(SummaryFile, struct{}{}))
	require.NoError(t, os.WriteFile(store.Path("notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(store.Path("subdir"), 0o755))

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a_v1.json", "002_b_v2.json"}, names)
}

func TestMergeSummaryAccumulates(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	first := &engine.RunSummary{
		TotalVideos: 2, Successful: 1, Failed: 1, ElapsedSeconds: 10,
		Videos: []engine.VideoOutcome{
			{VideoID: "v1", Success: true},
			{VideoID: "v2", Error: "no captions"},
		},
	}
	require.NoError(t, store.MergeSummary(first))

	second := &engine.RunSummary{
		TotalVideos: 3, Successful: 2, Skipped: 1, ElapsedSeconds: 5.5,
		Videos: []engine.VideoOutcome{
			{VideoID: "v1", Success: true, Skipped: true},
			{VideoID: "v3", Success: true},
			{VideoID: "v4", Success: true},
		},
	}
	require.NoError(t, store.MergeSummary(second))

	got, err := store.ReadSummary()
	require.NoError(t, err)
	assert.Equal(t, 5, got.TotalVideos)
	assert.Equal(t, 3, got.Successful)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, 1, got.Skipped)
	assert.InDelta(t, 15.5, got.ElapsedSeconds, 1e-9)

	require.Len(t, got.Videos, 5)
	// Earlier runs keep their position ahead of the new run's outcomes.
	assert.Equal(t, "v1", got.Videos[0].VideoID)
	assert.Equal(t, "v2", got.Videos[1].VideoID)
	assert.Equal(t, "v4", got.Videos[4].VideoID)
}

func TestMergeSummaryCorruptPrevious(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(SummaryFile), []byte("not json"), 0o644))

	run := &engine.RunSummary{TotalVideos: 1, Successful: 1}
	require.NoError(t, store.MergeSummary(run))

	got, err := store.ReadSummary()
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalVideos)
}

func TestNewArtifactStoreEmptyDir(t *testing.T) {
	_, err := NewArtifactStore("")
	assert.Error(t, err)
}
