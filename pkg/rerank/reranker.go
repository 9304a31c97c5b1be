package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"unicode"

	"live-assist-be/pkg/vectorindex"
)

// Reranker reorders retrieval candidates by combining the vector score
// with a secondary relevance signal. When a remote cross-encoder service
// is configured it is asked first; any remote failure falls back to
// lexical overlap scoring, so reranking itself never fails.
type Reranker struct {
	RemoteURL string
	Client    *http.Client
	OnError   func(err error)
}

func NewReranker(remoteURL string, onError func(err error)) *Reranker {
	return &Reranker{
		RemoteURL: remoteURL,
		Client:    &http.Client{},
		OnError:   onError,
	}
}

// Rerank reorders candidates for the query. weight=0 preserves pure
// vector ordering, weight=1 uses pure lexical ordering (fallback path
// only; the remote path replaces scores outright).
func (r *Reranker) Rerank(ctx context.Context, candidates []vectorindex.Candidate, query string, weight float64) []vectorindex.Candidate {
	if len(candidates) == 0 {
		return []vectorindex.Candidate{}
	}

	if r.RemoteURL != "" {
		reranked, err := r.rerankRemote(ctx, candidates, query)
		if err == nil {
			return reranked
		}
		if r.OnError != nil {
			r.OnError(err)
		}
	}

	return LexicalRerank(candidates, query, weight)
}

type remoteDocument struct {
	Id       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Score    float64                `json:"score"`
}

type remoteRerankRequest struct {
	Query     string           `json:"query"`
	Documents []remoteDocument `json:"documents"`
}

type remoteRerankResponse struct {
	Results []struct {
		Id    string  `json:"id"`
		Score float64 `json:"score"`
	} `json:"results"`
}

func (r *Reranker) rerankRemote(ctx context.Context, candidates []vectorindex.Candidate, query string) ([]vectorindex.Candidate, error) {
	docs := make([]remoteDocument, len(candidates))
	for i, c := range candidates {
		docs[i] = remoteDocument{
			Id:       c.ID,
			Text:     c.Text,
			Metadata: c.Metadata,
			Score:    c.Score,
		}
	}

	payload, err := json.Marshal(remoteRerankRequest{Query: query, Documents: docs})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.RemoteURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote rerank request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote rerank error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var remoteResp remoteRerankResponse
	if err := json.Unmarshal(bodyBytes, &remoteResp); err != nil {
		return nil, err
	}

	scoreById := make(map[string]float64, len(remoteResp.Results))
	for _, res := range remoteResp.Results {
		scoreById[res.Id] = res.Score
	}

	// Candidates absent from the remote response keep their original score.
	out := make([]vectorindex.Candidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		if score, ok := scoreById[out[i].ID]; ok {
			out[i].Score = score
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}

// LexicalRerank combines the vector score with query-token overlap:
// overlapScore = matchedQueryTokens / totalQueryTokens
// score = (1-weight)*vectorScore + weight*overlapScore
func LexicalRerank(candidates []vectorindex.Candidate, query string, weight float64) []vectorindex.Candidate {
	if len(candidates) == 0 {
		return []vectorindex.Candidate{}
	}

	queryTokens := tokenize(query)

	out := make([]vectorindex.Candidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		overlap := overlapScore(queryTokens, tokenize(out[i].Text))
		out[i].OverlapScore = overlap
		out[i].Score = (1-weight)*out[i].VectorScore + weight*overlap
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func overlapScore(queryTokens, docTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	docSet := make(map[string]struct{}, len(docTokens))
	for _, t := range docTokens {
		docSet[t] = struct{}{}
	}

	matched := 0
	for _, t := range queryTokens {
		if _, ok := docSet[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
