package vectorindex

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileIndex(t *testing.T) *FileIndex {
	t.Helper()
	index, err := NewFileIndex(filepath.Join(t.TempDir(), "vectors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })
	return index
}

func TestFileIndexRoundTrip(t *testing.T) {
	ctx := context.Background()
	index := newTestFileIndex(t)

	rec := Record{
		ID:        "doc-1-1",
		Text:      "Project Alpha kickoff is Friday at 10am",
		Metadata:  map[string]interface{}{"source": "upload"},
		Embedding: []float32{0.5, 0.5, 0.1},
	}
	require.NoError(t, index.Add(ctx, rec))

	candidates, err := index.Search(ctx, []float32{0.5, 0.5, 0.1}, 5)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, rec.ID, candidates[0].ID)
	assert.Equal(t, rec.Text, candidates[0].Text)
	assert.Equal(t, "upload", candidates[0].Metadata["source"])
	assert.InDelta(t, 1, candidates[0].Score, 1e-6)
}

func TestFileIndexDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	index := newTestFileIndex(t)

	require.NoError(t, index.Add(ctx, Record{ID: "a", Embedding: []float32{1, 2}}))
	err := index.Add(ctx, Record{ID: "b", Embedding: []float32{1, 2, 3}})
	assert.Error(t, err)
}

func TestFileIndexDeleteAndCount(t *testing.T) {
	ctx := context.Background()
	index := newTestFileIndex(t)

	require.NoError(t, index.Add(ctx, Record{ID: "a", Embedding: []float32{1}}))
	require.NoError(t, index.Add(ctx, Record{ID: "b", Embedding: []float32{2}}))

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, index.Delete(ctx, "a"))
	assert.ErrorIs(t, index.Delete(ctx, "a"), ErrNotFound)

	count, err = index.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestFileIndexClear(t *testing.T) {
	ctx := context.Background()
	index := newTestFileIndex(t)

	require.NoError(t, index.Add(ctx, Record{ID: "a", Embedding: []float32{1}}))
	require.NoError(t, index.Clear(ctx))

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Dimensionality resets with the records.
	require.NoError(t, index.Add(ctx, Record{ID: "b", Embedding: []float32{1, 2}}))
}
