package answer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocs() []Document {
	return []Document{
		{ID: "roaming.md#1", Source: "roaming.md", Text: "International roaming can be activated from the app. Roaming packs start at 499."},
		{ID: "sim.md#1", Source: "sim.md", Text: "A lost SIM card can be blocked by calling customer care. A replacement SIM costs 50."},
		{ID: "kyc.md#1", Source: "kyc.md", Text: "KYC documents include Aadhaar or passport."},
	}
}

func TestIndexSearchRanksRelevantFirst(t *testing.T) {
	idx := NewIndex()
	idx.Build(sampleDocs())
	require.Equal(t, 3, idx.Len())

	matches := idx.Search("how do I activate roaming?", 2)
	require.NotEmpty(t, matches)
	assert.Equal(t, "roaming.md#1", matches[0].ID)
	assert.Greater(t, matches[0].Score, 0.0)
	assert.LessOrEqual(t, matches[0].Score, 1.0+1e-9)

	matches = idx.Search("replacement sim card", 3)
	require.NotEmpty(t, matches)
	assert.Equal(t, "sim.md#1", matches[0].ID)
}

func TestIndexSearchEdgeCases(t *testing.T) {
	idx := NewIndex()
	assert.Nil(t, idx.Search("roaming", 3))

	idx.Build(sampleDocs())
	assert.Nil(t, idx.Search("zzzz unknown words", 3))
	assert.Nil(t, idx.Search("roaming", 0))
	assert.Len(t, idx.Search("the a or", 3), 2)
}

func TestIndexRebuildReplacesDocuments(t *testing.T) {
	idx := NewIndex()
	idx.Build(sampleDocs())
	idx.Build(sampleDocs()[:1])
	assert.Equal(t, 1, idx.Len())
	assert.Empty(t, idx.Search("passport", 3))
}

func TestLoadDocuments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "faq.md"), []byte("First paragraph.\r\n\r\nSecond paragraph.\n\n\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("Only one."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("binary"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	docs, err := LoadDocuments(dir)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "faq.md#1", docs[0].ID)
	assert.Equal(t, "Second paragraph.", docs[1].Text)
	assert.Equal(t, "notes.txt", docs[2].Source)

	docs, err = LoadDocuments(filepath.Join(dir, "missing"))
	assert.NoError(t, err)
	assert.Empty(t, docs)
}
