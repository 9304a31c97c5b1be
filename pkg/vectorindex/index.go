package vectorindex

import (
	"context"
	"fmt"
	"math"
)

// Record is one indexed piece of text with its embedding.
type Record struct {
	ID        string                 `json:"id"`
	Text      string                 `json:"text"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Embedding []float32              `json:"embedding"`
}

// Candidate is a Record plus retrieval scores. Never persisted.
type Candidate struct {
	Record
	Score        float64 `json:"score"`
	VectorScore  float64 `json:"vector_score"`
	OverlapScore float64 `json:"overlap_score,omitempty"`
}

// Index is the contract for any vector index backend.
// Duplicate ids are last-write-wins.
type Index interface {
	Add(ctx context.Context, rec Record) error
	Search(ctx context.Context, vector []float32, topK int) ([]Candidate, error)
	List(ctx context.Context, limit, offset int) ([]Record, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// ErrNotFound is returned by Delete when the id is not indexed.
var ErrNotFound = fmt.Errorf("vector record not found")

// CosineSimilarity computes cosine similarity between two vectors.
// A zero-norm vector is defined as having similarity 0 with anything.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
