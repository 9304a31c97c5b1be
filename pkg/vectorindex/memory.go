package vectorindex

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryIndex keeps records in a map. Used for tests and as the default
// backend when no file path or DSN is configured.
type MemoryIndex struct {
	mu      sync.RWMutex
	records map[string]Record
	order   []string
	dim     int
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		records: make(map[string]Record),
	}
}

func (m *MemoryIndex) Add(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// First write establishes the index dimensionality.
	if m.dim == 0 {
		m.dim = len(rec.Embedding)
	} else if len(rec.Embedding) != m.dim {
		return fmt.Errorf("embedding dimension mismatch: got %d, index has %d", len(rec.Embedding), m.dim)
	}

	if _, exists := m.records[rec.ID]; !exists {
		m.order = append(m.order, rec.ID)
	}
	m.records[rec.ID] = rec
	return nil
}

func (m *MemoryIndex) Search(ctx context.Context, vector []float32, topK int) ([]Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if topK <= 0 {
		topK = 5
	}

	candidates := make([]Candidate, 0, len(m.records))
	for _, rec := range m.records {
		score := CosineSimilarity(vector, rec.Embedding)
		candidates = append(candidates, Candidate{
			Record:      rec,
			Score:       score,
			VectorScore: score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

func (m *MemoryIndex) List(ctx context.Context, limit, offset int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(m.order) {
		return []Record{}, nil
	}
	end := len(m.order)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]Record, 0, end-offset)
	for _, id := range m.order[offset:end] {
		out = append(out, m.records[id])
	}
	return out, nil
}

func (m *MemoryIndex) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryIndex) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[string]Record)
	m.order = nil
	m.dim = 0
	return nil
}

func (m *MemoryIndex) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}
