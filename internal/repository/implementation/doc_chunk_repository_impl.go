package implementation

import (
	"context"

	"mindease-be/internal/entity"
	"mindease-be/internal/mapper"
	"mindease-be/internal/model"
	"mindease-be/internal/repository/contract"
	"mindease-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocChunkMapper
}

func NewDocChunkRepository(db *gorm.DB) contract.DocChunkRepository {
	return &DocChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocChunkMapper(),
	}
}

func (r *DocChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.DocChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(chunks)

	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *DocChunkRepositoryImpl) DeleteByPath(ctx context.Context, relativePath string) error {
	return r.db.WithContext(ctx).Where("relative_path = ?", relativePath).Delete(&model.DocChunk{}).Error
}

func (r *DocChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocChunk, error) {
	var models []*model.DocChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.DocChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *DocChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.DocChunk{}), specs...)
	err := query.Count(&count).Error
	return count, err
}

func (r *DocChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredDocChunk, error) {
	if limit <= 0 {
		return []*contract.ScoredDocChunk{}, nil
	}

	// pgvector cosine distance is 1 - cosine_similarity
	type result struct {
		model.DocChunk
		Similarity float64
	}
	var results []result

	err := r.db.WithContext(ctx).
		Table(model.DocChunk{}.TableName()).
		Select("*, 1 - (chunk_vec <=> ?) as similarity", pgvector.NewVector(embedding)).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredDocChunk, len(results))
	for i := range results {
		scored[i] = &contract.ScoredDocChunk{
			Chunk:      r.mapper.ToEntity(&results[i].DocChunk),
			Similarity: results[i].Similarity,
		}
	}
	return scored, nil
}

func (r *DocChunkRepositoryImpl) ListDocuments(ctx context.Context) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).
		Model(&model.DocChunk{}).
		Distinct("relative_path").
		Order("relative_path ASC").
		Pluck("relative_path", &paths).Error
	if err != nil {
		return nil, err
	}
	return paths, nil
}
