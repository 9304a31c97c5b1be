package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"live-assist-be/internal/dto"
	"live-assist-be/pkg/embedding"
	"live-assist-be/pkg/ingest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"live-assist-be/pkg/vectorindex"
)

type capturePublisher struct {
	messages []dto.IngestFileMessage
}

func (p *capturePublisher) PublishIngestFile(msg dto.IngestFileMessage) error {
	p.messages = append(p.messages, msg)
	return nil
}

func newTestTranscriptService(t *testing.T) (ITranscriptService, *capturePublisher, string) {
	t.Helper()

	dir := t.TempDir()
	registry, err := ingest.NewRegistry(filepath.Join(dir, "registry.json"))
	require.NoError(t, err)
	pipeline := ingest.NewPipeline(embedding.NewHashProvider(64), vectorindex.NewMemoryIndex(), registry, 100, 10, nopLogger{})

	publisher := &capturePublisher{}
	transcriptsDir := filepath.Join(dir, "transcripts")
	ts := NewTranscriptService(transcriptsDir, registry, pipeline, publisher, nopLogger{})
	return ts, publisher, transcriptsDir
}

func TestTranscriptAppendAndTail(t *testing.T) {
	ts, _, _ := newTestTranscriptService(t)

	ts.Append("s1", "line one")
	ts.Append("s1", "line two")
	ts.Append("s1", "line three")
	ts.Append("s2", "other session")

	assert.Equal(t, []string{"line two", "line three"}, ts.Tail("s1", 2))
	assert.Equal(t, []string{"line one", "line two", "line three"}, ts.Tail("s1", 0))
	assert.Empty(t, ts.Tail("unknown", 5))
}

func TestTranscriptFlushWritesFileAndPublishes(t *testing.T) {
	ts, publisher, dir := newTestTranscriptService(t)

	ts.Append("s1", "alpha")
	ts.Append("s1", "beta")

	filename, err := ts.Flush(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "session-s1-"))
	assert.True(t, strings.HasSuffix(filename, ".txt"))

	data, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta", string(data))

	require.Len(t, publisher.messages, 1)
	assert.Equal(t, "transcript", publisher.messages[0].Source)
	assert.Equal(t, "s1", publisher.messages[0].SessionId)

	// The buffer is consumed by the flush.
	assert.Empty(t, ts.Tail("s1", 0))
}

func TestTranscriptFlushEmptyBufferIsNoop(t *testing.T) {
	ts, publisher, dir := newTestTranscriptService(t)

	filename, err := ts.Flush(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Empty(t, filename)
	assert.Empty(t, publisher.messages)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestTranscriptDrop(t *testing.T) {
	ts, publisher, _ := newTestTranscriptService(t)

	ts.Append("s1", "discard me")
	ts.Drop("s1")

	filename, err := ts.Flush(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, filename)
	assert.Empty(t, publisher.messages)
}

func TestTranscriptRescanQueuesUnregisteredFiles(t *testing.T) {
	ts, publisher, dir := newTestTranscriptService(t)

	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session-old-1.txt"), []byte("old words"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte(`["a"]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.bin"), []byte("x"), 0644))

	resp, err := ts.Rescan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Queued)
	assert.Len(t, publisher.messages, 2)
	for _, msg := range publisher.messages {
		assert.Equal(t, "scan", msg.Source)
	}
}

func TestTranscriptReingest(t *testing.T) {
	ts, _, dir := newTestTranscriptService(t)

	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "session-x-1.txt")
	require.NoError(t, os.WriteFile(path, []byte("the roadmap review moved to Thursday"), 0644))

	resp, err := ts.Reingest(context.Background(), &dto.ReingestRequest{Filename: "session-x-1.txt"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Added)

	// Without force the registry short-circuits the second run.
	resp, err = ts.Reingest(context.Background(), &dto.ReingestRequest{Filename: "session-x-1.txt"})
	require.NoError(t, err)
	assert.Zero(t, resp.Added)

	// Force drops the registry entry and ingests again.
	resp, err = ts.Reingest(context.Background(), &dto.ReingestRequest{Filename: "session-x-1.txt", Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Added)
}

func TestTranscriptReingestUnknownFile(t *testing.T) {
	ts, _, _ := newTestTranscriptService(t)

	_, err := ts.Reingest(context.Background(), &dto.ReingestRequest{Filename: "missing.txt"})
	assert.Error(t, err)
}
