package vectorindex

import (
	"context"
	"errors"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// KnowledgeChunk is the gorm model behind the pgvector backend.
type KnowledgeChunk struct {
	Id        string          `gorm:"type:text;primaryKey"`
	Document  string          `gorm:"type:text"`
	Metadata  datatypes.JSONMap
	Embedding pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

func (KnowledgeChunk) TableName() string {
	return "knowledge_chunks"
}

// PgvectorIndex stores records in Postgres and delegates similarity
// ordering to the pgvector cosine distance operator. Unlike the local
// backends, errors here propagate to the caller of the request; there
// is no fallback for a remote index.
type PgvectorIndex struct {
	db *gorm.DB
}

func NewPgvectorIndex(db *gorm.DB) (*PgvectorIndex, error) {
	if err := db.AutoMigrate(&KnowledgeChunk{}); err != nil {
		return nil, err
	}
	return &PgvectorIndex{db: db}, nil
}

func (p *PgvectorIndex) Add(ctx context.Context, rec Record) error {
	m := KnowledgeChunk{
		Id:        rec.ID,
		Document:  rec.Text,
		Metadata:  datatypes.JSONMap(rec.Metadata),
		Embedding: pgvector.NewVector(rec.Embedding),
	}
	// Last-write-wins on duplicate id.
	return p.db.WithContext(ctx).Save(&m).Error
}

func (p *PgvectorIndex) Search(ctx context.Context, vector []float32, topK int) ([]Candidate, error) {
	if topK <= 0 {
		topK = 5
	}

	type scoredChunk struct {
		KnowledgeChunk
		Similarity float64
	}
	var results []scoredChunk
	if err := p.similarityQuery(ctx, vector, topK).Find(&results).Error; err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, Candidate{
			Record:      toRecord(r.KnowledgeChunk),
			Score:       r.Similarity,
			VectorScore: r.Similarity,
		})
	}
	return candidates, nil
}

// similarityQuery ranks rows inside Postgres so LIMIT keeps the nearest
// rows, not an arbitrary subset. Cosine distance in pgvector is
// 1 - cosine_similarity.
func (p *PgvectorIndex) similarityQuery(ctx context.Context, vector []float32, topK int) *gorm.DB {
	queryVector := pgvector.NewVector(vector)
	return p.db.WithContext(ctx).
		Table("knowledge_chunks").
		Select("knowledge_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Order("similarity DESC").
		Limit(topK)
}

func (p *PgvectorIndex) List(ctx context.Context, limit, offset int) ([]Record, error) {
	query := p.db.WithContext(ctx).Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var models []KnowledgeChunk
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(models))
	for _, m := range models {
		records = append(records, toRecord(m))
	}
	return records, nil
}

func (p *PgvectorIndex) Delete(ctx context.Context, id string) error {
	res := p.db.WithContext(ctx).Delete(&KnowledgeChunk{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PgvectorIndex) Clear(ctx context.Context) error {
	return p.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&KnowledgeChunk{}).Error
}

func (p *PgvectorIndex) Count(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&KnowledgeChunk{}).Count(&count).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return count, err
}

func toRecord(m KnowledgeChunk) Record {
	return Record{
		ID:        m.Id,
		Text:      m.Document,
		Metadata:  map[string]interface{}(m.Metadata),
		Embedding: m.Embedding.Slice(),
	}
}
