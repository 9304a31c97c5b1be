package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"live-assist-be/internal/pkg/logger"
	"live-assist-be/pkg/embedding"
	"live-assist-be/pkg/vectorindex"
)

// Pipeline turns raw text into indexed vector records: chunk, embed,
// write. File-level ingestion is deduplicated through the Registry.
type Pipeline struct {
	embedder  embedding.Provider
	index     vectorindex.Index
	registry  *Registry
	chunkSize int
	overlap   int
	logger    logger.ILogger
}

func NewPipeline(
	embedder embedding.Provider,
	index vectorindex.Index,
	registry *Registry,
	chunkSize int,
	overlap int,
	log logger.ILogger,
) *Pipeline {
	return &Pipeline{
		embedder:  embedder,
		index:     index,
		registry:  registry,
		chunkSize: chunkSize,
		overlap:   overlap,
		logger:    log,
	}
}

// IngestText chunks, embeds and indexes the text. Record ids are
// "{idPrefix}-{chunkIndex+1}" and the metadata of every record is
// extended with the chunk position. Returns the number of records added.
func (p *Pipeline) IngestText(ctx context.Context, text string, metadata map[string]interface{}, idPrefix string) (int, error) {
	chunks := Chunk(text, p.chunkSize, p.overlap)
	if len(chunks) == 0 {
		return 0, nil
	}

	added := 0
	for i, chunk := range chunks {
		values, err := p.embedder.Embed(ctx, chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			return added, fmt.Errorf("embed chunk %d: %w", i+1, err)
		}

		recMeta := make(map[string]interface{}, len(metadata)+2)
		for k, v := range metadata {
			recMeta[k] = v
		}
		recMeta["chunk"] = i + 1
		recMeta["chunkCount"] = len(chunks)

		rec := vectorindex.Record{
			ID:        fmt.Sprintf("%s-%d", idPrefix, i+1),
			Text:      chunk,
			Metadata:  recMeta,
			Embedding: values,
		}
		if err := p.index.Add(ctx, rec); err != nil {
			return added, fmt.Errorf("index chunk %d: %w", i+1, err)
		}
		added++
	}

	return added, nil
}

// IngestFile reads and ingests one durable file. Files already present
// in the registry are skipped (returns 0). The registry records the
// path only when at least one chunk was added.
func (p *Pipeline) IngestFile(ctx context.Context, path string, sessionId string) (int, error) {
	if p.registry.Has(path) {
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	text := normalizeContent(path, data)

	metadata := map[string]interface{}{
		"source":   "transcript",
		"filename": filepath.Base(path),
	}
	if sessionId != "" {
		metadata["sessionId"] = sessionId
	}

	idPrefix := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	added, err := p.IngestText(ctx, text, metadata, idPrefix)
	if err != nil {
		return added, err
	}

	if added > 0 {
		if err := p.registry.Mark(path); err != nil {
			p.logger.Warn("Ingest", "Failed to persist ingested-file registry", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
	}
	return added, nil
}

// normalizeContent extracts plain text from a transcript file. JSON
// files may be a flat array of strings, an object with a .text string,
// an object with a .lines array, or anything else (pretty-printed).
func normalizeContent(path string, data []byte) string {
	if strings.ToLower(filepath.Ext(path)) != ".json" {
		return string(data)
	}

	var parsed interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return string(data)
	}

	switch v := parsed.(type) {
	case []interface{}:
		lines := make([]string, 0, len(v))
		allStrings := true
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				allStrings = false
				break
			}
			lines = append(lines, s)
		}
		if allStrings {
			return strings.Join(lines, "\n")
		}
	case map[string]interface{}:
		if text, ok := v["text"].(string); ok {
			return text
		}
		if rawLines, ok := v["lines"].([]interface{}); ok {
			lines := make([]string, 0, len(rawLines))
			for _, item := range rawLines {
				if s, ok := item.(string); ok {
					lines = append(lines, s)
				}
			}
			return strings.Join(lines, "\n")
		}
	}

	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return string(data)
	}
	return string(pretty)
}
