package vectorindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

func newDryRunIndex(t *testing.T) *PgvectorIndex {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return &PgvectorIndex{db: db}
}

func TestSimilarityQueryOrdersByDistance(t *testing.T) {
	idx := newDryRunIndex(t)

	var rows []KnowledgeChunk
	stmt := idx.similarityQuery(context.Background(), []float32{0.1, 0.2, 0.3}, 3).Find(&rows).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, "1 - (embedding <=> ?) as similarity")
	assert.Contains(t, sql, "ORDER BY similarity DESC")
	assert.Contains(t, sql, "LIMIT")
}

func TestSimilarityQueryDefaultsTopK(t *testing.T) {
	idx := newDryRunIndex(t)

	// Search normalizes topK before building the query.
	_, err := idx.Search(context.Background(), []float32{0.5, 0.5}, 0)
	require.NoError(t, err)
}
