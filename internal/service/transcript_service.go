package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"live-assist-be/internal/dto"
	"live-assist-be/internal/pkg/logger"
	"live-assist-be/internal/pkg/serverutils"
	"live-assist-be/pkg/ingest"
)

// ITranscriptService owns the per-session transcript buffers and the
// durable transcripts directory.
type ITranscriptService interface {
	Append(sessionId string, line string)
	Tail(sessionId string, n int) []string
	Flush(ctx context.Context, sessionId string) (string, error)
	Drop(sessionId string)
	ListFiles() ([]dto.TranscriptFileResponse, error)
	Rescan(ctx context.Context) (*dto.RescanResponse, error)
	Reingest(ctx context.Context, request *dto.ReingestRequest) (*dto.ReingestResponse, error)
}

type transcriptService struct {
	mu        sync.Mutex
	buffers   map[string][]string
	dir       string
	registry  *ingest.Registry
	pipeline  *ingest.Pipeline
	publisher IPublisherService
	logger    logger.ILogger
}

func NewTranscriptService(
	dir string,
	registry *ingest.Registry,
	pipeline *ingest.Pipeline,
	publisher IPublisherService,
	log logger.ILogger,
) ITranscriptService {
	return &transcriptService{
		buffers:   make(map[string][]string),
		dir:       dir,
		registry:  registry,
		pipeline:  pipeline,
		publisher: publisher,
		logger:    log,
	}
}

// Append buffers one final transcript line, insertion order preserved.
func (ts *transcriptService) Append(sessionId string, line string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.buffers[sessionId] = append(ts.buffers[sessionId], line)
}

// Tail returns the last n buffered lines for the session.
func (ts *transcriptService) Tail(sessionId string, n int) []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	lines := ts.buffers[sessionId]
	if n <= 0 || n >= len(lines) {
		out := make([]string, len(lines))
		copy(out, lines)
		return out
	}
	out := make([]string, n)
	copy(out, lines[len(lines)-n:])
	return out
}

// Flush writes the buffered lines to a uniquely named durable file and
// queues it for ingestion. An empty buffer is a no-op and never errors.
func (ts *transcriptService) Flush(ctx context.Context, sessionId string) (string, error) {
	ts.mu.Lock()
	lines := ts.buffers[sessionId]
	delete(ts.buffers, sessionId)
	ts.mu.Unlock()

	if len(lines) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(ts.dir, 0755); err != nil {
		return "", fmt.Errorf("create transcripts dir: %w", err)
	}

	filename := fmt.Sprintf("session-%s-%d.txt", sessionId, time.Now().Unix())
	path := filepath.Join(ts.dir, filename)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}

	ts.logger.Info("Transcript", "Session flushed", map[string]interface{}{
		"session_id": sessionId,
		"filename":   filename,
		"lines":      len(lines),
	})

	if err := ts.publisher.PublishIngestFile(dto.IngestFileMessage{
		Path:      path,
		SessionId: sessionId,
		Source:    "transcript",
	}); err != nil {
		ts.logger.Error("Transcript", "Failed to queue transcript for ingestion", map[string]interface{}{
			"filename": filename,
			"error":    err.Error(),
		})
	}

	return filename, nil
}

// Drop discards the buffer without flushing.
func (ts *transcriptService) Drop(sessionId string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	delete(ts.buffers, sessionId)
}

func (ts *transcriptService) ListFiles() ([]dto.TranscriptFileResponse, error) {
	entries, err := os.ReadDir(ts.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []dto.TranscriptFileResponse{}, nil
		}
		return nil, err
	}

	ingested := ts.registry.All()

	files := make([]dto.TranscriptFileResponse, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isTranscriptFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(ts.dir, entry.Name())
		ingestedAt, ok := ingested[path]
		files = append(files, dto.TranscriptFileResponse{
			Filename:   entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
			Ingested:   ok,
			IngestedAt: ingestedAt,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModifiedAt.After(files[j].ModifiedAt)
	})
	return files, nil
}

// Rescan queues every durable transcript file missing from the
// ingested-files registry. The consumer performs the actual ingestion.
func (ts *transcriptService) Rescan(ctx context.Context) (*dto.RescanResponse, error) {
	entries, err := os.ReadDir(ts.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return &dto.RescanResponse{Queued: 0}, nil
		}
		return nil, err
	}

	queued := 0
	for _, entry := range entries {
		if entry.IsDir() || !isTranscriptFile(entry.Name()) {
			continue
		}
		path := filepath.Join(ts.dir, entry.Name())
		if ts.registry.Has(path) {
			continue
		}
		if err := ts.publisher.PublishIngestFile(dto.IngestFileMessage{
			Path:   path,
			Source: "scan",
		}); err != nil {
			ts.logger.Error("Transcript", "Failed to queue file during rescan", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			continue
		}
		queued++
	}

	return &dto.RescanResponse{Queued: queued}, nil
}

// Reingest ingests one file synchronously. With force, the registry
// entry is dropped first so the pipeline processes the file again.
func (ts *transcriptService) Reingest(ctx context.Context, request *dto.ReingestRequest) (*dto.ReingestResponse, error) {
	path := filepath.Join(ts.dir, filepath.Base(request.Filename))
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, serverutils.NewNotFoundError("transcript file not found")
		}
		return nil, err
	}

	if request.Force {
		if err := ts.registry.Forget(path); err != nil {
			return nil, err
		}
	}

	added, err := ts.pipeline.IngestFile(ctx, path, "")
	if err != nil {
		return nil, err
	}
	return &dto.ReingestResponse{Added: added}, nil
}

func isTranscriptFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".json":
		return true
	}
	return false
}
