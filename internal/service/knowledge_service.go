package service

import (
	"context"
	"fmt"
	"strings"

	"live-assist-be/internal/dto"
	"live-assist-be/internal/pkg/logger"
	"live-assist-be/internal/pkg/serverutils"
	"live-assist-be/pkg/embedding"
	"live-assist-be/pkg/ingest"
	"live-assist-be/pkg/rerank"
	"live-assist-be/pkg/vectorindex"

	"github.com/google/uuid"
)

// IKnowledgeService owns the vector index surface: ingestion of ad-hoc
// documents, similarity search with reranking, and index administration.
type IKnowledgeService interface {
	Ingest(ctx context.Context, request *dto.IngestRequest) (*dto.IngestResponse, error)
	Search(ctx context.Context, query string, topK int) ([]vectorindex.Candidate, error)
	SearchResults(ctx context.Context, request *dto.SearchRequest) (*dto.SearchResponse, error)
	ListVectors(ctx context.Context, limit, offset int) (*dto.ListVectorsResponse, error)
	DeleteVector(ctx context.Context, id string) error
	ClearVectors(ctx context.Context) error
}

type knowledgeService struct {
	embedder     embedding.Provider
	index        vectorindex.Index
	reranker     *rerank.Reranker
	pipeline     *ingest.Pipeline
	topK         int
	rerankWeight float64
	logger       logger.ILogger
}

func NewKnowledgeService(
	embedder embedding.Provider,
	index vectorindex.Index,
	reranker *rerank.Reranker,
	pipeline *ingest.Pipeline,
	topK int,
	rerankWeight float64,
	log logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		embedder:     embedder,
		index:        index,
		reranker:     reranker,
		pipeline:     pipeline,
		topK:         topK,
		rerankWeight: rerankWeight,
		logger:       log,
	}
}

func (ks *knowledgeService) Ingest(ctx context.Context, request *dto.IngestRequest) (*dto.IngestResponse, error) {
	total := 0
	for _, doc := range request.Documents {
		added, err := ks.pipeline.IngestText(ctx, doc.Text, doc.Metadata, "doc-"+uuid.New().String()[:8])
		if err != nil {
			return nil, fmt.Errorf("ingest document: %w", err)
		}
		total += added
	}

	ks.logger.Info("Knowledge", "Ingested documents", map[string]interface{}{
		"documents": len(request.Documents),
		"added":     total,
	})
	return &dto.IngestResponse{Added: total}, nil
}

// Search embeds the query, runs similarity search and reranks the
// candidates. An empty or whitespace-only query returns an empty result
// set without calling the embedder.
func (ks *knowledgeService) Search(ctx context.Context, query string, topK int) ([]vectorindex.Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return []vectorindex.Candidate{}, nil
	}
	if topK <= 0 {
		topK = ks.topK
	}

	vector, err := ks.embedder.Embed(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := ks.index.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	return ks.reranker.Rerank(ctx, candidates, query, ks.rerankWeight), nil
}

func (ks *knowledgeService) SearchResults(ctx context.Context, request *dto.SearchRequest) (*dto.SearchResponse, error) {
	candidates, err := ks.Search(ctx, request.Query, request.TopK)
	if err != nil {
		return nil, err
	}

	results := make([]dto.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, dto.SearchResult{
			Id:           c.ID,
			Text:         c.Text,
			Metadata:     c.Metadata,
			Score:        c.Score,
			VectorScore:  c.VectorScore,
			OverlapScore: c.OverlapScore,
		})
	}
	return &dto.SearchResponse{Results: results}, nil
}

func (ks *knowledgeService) ListVectors(ctx context.Context, limit, offset int) (*dto.ListVectorsResponse, error) {
	total, err := ks.index.Count(ctx)
	if err != nil {
		return nil, err
	}

	records, err := ks.index.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]dto.VectorRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, dto.VectorRecordResponse{
			Id:       rec.ID,
			Text:     rec.Text,
			Metadata: rec.Metadata,
		})
	}
	return &dto.ListVectorsResponse{Total: total, Records: out}, nil
}

func (ks *knowledgeService) DeleteVector(ctx context.Context, id string) error {
	if err := ks.index.Delete(ctx, id); err != nil {
		if err == vectorindex.ErrNotFound {
			return serverutils.NewNotFoundError("vector record not found")
		}
		return err
	}
	return nil
}

func (ks *knowledgeService) ClearVectors(ctx context.Context) error {
	return ks.index.Clear(ctx)
}
