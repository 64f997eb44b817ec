package contract

import (
	"context"

	"mindease-be/internal/entity"
	"mindease-be/internal/repository/specification"
)

// ScoredDocChunk wraps DocChunk with its similarity score
type ScoredDocChunk struct {
	Chunk      *entity.DocChunk
	Similarity float64 // 1.0 = identical
}

type DocChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocChunk) error
	DeleteByPath(ctx context.Context, relativePath string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns at most limit rows ordered by descending cosine similarity
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredDocChunk, error)
	// ListDocuments returns the distinct relative paths present in the store
	ListDocuments(ctx context.Context) ([]string, error)
}
