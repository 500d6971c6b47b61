package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/personalens/personalens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysisInput(t *testing.T) {
	t.Run("yaml document", func(t *testing.T) {
		data := []byte(`
items:
  - date: "2025-01-01"
    text: we ship weekly
  - date: "2025-02-01"
    text: we ship daily
segments:
  - startMs: 0
    endMs: 4000
    prosody: {rms: 0.1, zcr: 0.05, pauseRatio: 0.2, pitchHz: 120}
    embedding: [1, 0]
indices: [0, 2]
`)
		input, err := ParseAnalysisInput(data)
		require.NoError(t, err)
		require.Len(t, input.Items, 2)
		assert.Equal(t, "we ship daily", input.Items[1].Text)
		require.Len(t, input.Segments, 1)
		require.NotNil(t, input.Segments[0].Prosody)
		assert.InDelta(t, 120.0, input.Segments[0].Prosody.PitchHz, 1e-9)
		assert.Equal(t, schema.FeatureVector{1, 0}, input.Segments[0].Embedding)
		assert.Equal(t, []int{0, 2}, input.Indices)
	})

	t.Run("json document", func(t *testing.T) {
		input, err := ParseAnalysisInput([]byte(`{"textA": "a", "textB": "b", "frames": [{"timeMs": 0, "embedding": [0.5, 0.5]}]}`))
		require.NoError(t, err)
		assert.Equal(t, "a", input.TextA)
		assert.Equal(t, "b", input.TextB)
		require.Len(t, input.Frames, 1)
	})

	t.Run("plain text list", func(t *testing.T) {
		input, err := ParseAnalysisInput([]byte("- first\n- second\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, input.Texts)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseAnalysisInput([]byte("  \n"))
		assert.Error(t, err)
	})
}

func TestLoadAnalysisInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("texts:\n  - one\n  - two\n"), 0o644))

	input, err := LoadAnalysisInput(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, input.Texts)

	_, err = LoadAnalysisInput(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
