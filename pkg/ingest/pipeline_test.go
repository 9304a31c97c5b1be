package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"live-assist-be/pkg/embedding"
	"live-assist-be/pkg/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newTestPipeline(t *testing.T) (*Pipeline, *vectorindex.MemoryIndex, *Registry) {
	t.Helper()
	index := vectorindex.NewMemoryIndex()
	registry, err := NewRegistry(filepath.Join(t.TempDir(), "registry.json"))
	require.NoError(t, err)

	pipeline := NewPipeline(embedding.NewHashProvider(64), index, registry, 100, 10, nopLogger{})
	return pipeline, index, registry
}

func TestIngestTextAssignsChunkIds(t *testing.T) {
	pipeline, index, _ := newTestPipeline(t)

	added, err := pipeline.IngestText(context.Background(), "Project Alpha kickoff is Friday at 10am", map[string]interface{}{"topic": "alpha"}, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	records, err := index.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "doc-1-1", records[0].ID)
	assert.Equal(t, "alpha", records[0].Metadata["topic"])
	assert.EqualValues(t, 1, records[0].Metadata["chunk"])
	assert.EqualValues(t, 1, records[0].Metadata["chunkCount"])
}

func TestIngestTextEmptyInput(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t)

	added, err := pipeline.IngestText(context.Background(), "   ", nil, "doc-2")
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestIngestFileAtMostOnce(t *testing.T) {
	pipeline, _, registry := newTestPipeline(t)

	path := filepath.Join(t.TempDir(), "session-abc-1.txt")
	require.NoError(t, os.WriteFile(path, []byte("We shipped the reporting feature last sprint."), 0644))

	added, err := pipeline.IngestFile(context.Background(), path, "abc")
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	again, err := pipeline.IngestFile(context.Background(), path, "abc")
	require.NoError(t, err)
	assert.Zero(t, again)

	assert.Len(t, registry.All(), 1)
}

func TestIngestFileEmptyContentNotRegistered(t *testing.T) {
	pipeline, _, registry := newTestPipeline(t)

	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("  "), 0644))

	added, err := pipeline.IngestFile(context.Background(), path, "")
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.False(t, registry.Has(path))
}

func TestNormalizeContentJSONShapes(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"array of strings", `["line one","line two"]`, "line one\nline two"},
		{"text object", `{"text":"hello there"}`, "hello there"},
		{"lines object", `{"lines":["a","b"]}`, "a\nb"},
		{"invalid json passthrough", `{broken`, `{broken`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeContent("transcript.json", []byte(tt.content))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeContentUnknownJSONPrettyPrinted(t *testing.T) {
	got := normalizeContent("transcript.json", []byte(`{"speaker":"amy"}`))
	assert.Contains(t, got, `"speaker": "amy"`)
}

func TestNormalizeContentPlainText(t *testing.T) {
	got := normalizeContent("transcript.txt", []byte(`{"text":"not parsed"}`))
	assert.Equal(t, `{"text":"not parsed"}`, got)
}
