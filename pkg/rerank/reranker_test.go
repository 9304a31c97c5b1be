package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"live-assist-be/pkg/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(id, text string, vectorScore float64) vectorindex.Candidate {
	return vectorindex.Candidate{
		Record:      vectorindex.Record{ID: id, Text: text},
		Score:       vectorScore,
		VectorScore: vectorScore,
	}
}

func TestRerankEmptyCandidates(t *testing.T) {
	r := NewReranker("", nil)
	out := r.Rerank(context.Background(), nil, "anything", 0.5)
	assert.Empty(t, out)
}

func TestLexicalRerankWeightZeroPreservesVectorOrder(t *testing.T) {
	candidates := []vectorindex.Candidate{
		candidate("a", "completely unrelated text", 0.9),
		candidate("b", "alpha kickoff friday", 0.5),
	}

	out := LexicalRerank(candidates, "alpha kickoff", 0)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "b", out[1].ID)
}

func TestLexicalRerankWeightOnePureLexical(t *testing.T) {
	candidates := []vectorindex.Candidate{
		candidate("a", "completely unrelated text", 0.9),
		candidate("b", "alpha kickoff friday", 0.5),
	}

	out := LexicalRerank(candidates, "alpha kickoff", 1)
	assert.Equal(t, "b", out[0].ID)
	assert.InDelta(t, 1.0, out[0].OverlapScore, 1e-9)
	assert.Zero(t, out[1].OverlapScore)
}

func TestLexicalRerankBlendedScore(t *testing.T) {
	candidates := []vectorindex.Candidate{
		candidate("a", "the alpha project", 0.6),
	}

	out := LexicalRerank(candidates, "alpha beta", 0.5)
	// One of two query tokens matched.
	assert.InDelta(t, 0.5, out[0].OverlapScore, 1e-9)
	assert.InDelta(t, 0.5*0.6+0.5*0.5, out[0].Score, 1e-9)
}

func TestRerankRemoteOverridesScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var body remoteRerankRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "alpha kickoff", body.Query)
		require.Len(t, body.Documents, 2)

		// Only the second candidate gets a remote score.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{"id": "b", "score": 0.95},
			},
		})
	}))
	defer srv.Close()

	r := NewReranker(srv.URL, nil)
	out := r.Rerank(context.Background(), []vectorindex.Candidate{
		candidate("a", "first", 0.7),
		candidate("b", "second", 0.2),
	}, "alpha kickoff", 0.3)

	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID)
	assert.InDelta(t, 0.95, out[0].Score, 1e-9)
	// Absent from the remote response, keeps its original score.
	assert.InDelta(t, 0.7, out[1].Score, 1e-9)
}

func TestRerankRemoteFailureFallsBackToLexical(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	var reported error
	r := NewReranker(srv.URL, func(err error) { reported = err })

	out := r.Rerank(context.Background(), []vectorindex.Candidate{
		candidate("a", "no overlap here", 0.9),
		candidate("b", "alpha kickoff friday", 0.1),
	}, "alpha kickoff", 1)

	require.Error(t, reported)
	assert.Equal(t, "b", out[0].ID)
}
