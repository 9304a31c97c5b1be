package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Registry remembers which durable files have already been ingested, so
// ingestion is at-most-once per file across process restarts. The
// backing store is a flat JSON object mapping file path to the RFC3339
// timestamp of its ingestion.
type Registry struct {
	mu       sync.Mutex
	path     string
	ingested map[string]string
}

func NewRegistry(path string) (*Registry, error) {
	r := &Registry{
		path:     path,
		ingested: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &r.ingested); err != nil {
		// A corrupt registry means files may be re-ingested once;
		// last-write-wins on record ids keeps that harmless.
		r.ingested = make(map[string]string)
	}
	return r, nil
}

func (r *Registry) Has(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ingested[path]
	return ok
}

func (r *Registry) Mark(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingested[path] = time.Now().Format(time.RFC3339)
	return r.persistLocked()
}

func (r *Registry) Forget(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ingested, path)
	return r.persistLocked()
}

// All returns a copy of the path -> timestamp mapping.
func (r *Registry) All() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.ingested))
	for k, v := range r.ingested {
		out[k] = v
	}
	return out
}

func (r *Registry) persistLocked() error {
	data, err := json.MarshalIndent(r.ingested, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0644)
}
