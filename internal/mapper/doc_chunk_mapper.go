package mapper

import (
	"mindease-be/internal/entity"
	"mindease-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocChunkMapper struct{}

func NewDocChunkMapper() *DocChunkMapper {
	return &DocChunkMapper{}
}

func (m *DocChunkMapper) ToEntity(c *model.DocChunk) *entity.DocChunk {
	if c == nil {
		return nil
	}

	return &entity.DocChunk{
		Id:           c.Id,
		RelativePath: c.RelativePath,
		Chunk:        c.Chunk,
		ChunkVec:     c.ChunkVec.Slice(),
		ChunkIndex:   c.ChunkIndex,
		Metadata:     c.Metadata,
		CreatedAt:    c.CreatedAt,
	}
}

func (m *DocChunkMapper) ToModel(c *entity.DocChunk) *model.DocChunk {
	if c == nil {
		return nil
	}

	var metadata datatypes.JSONMap
	if c.Metadata != nil {
		metadata = datatypes.JSONMap(c.Metadata)
	}

	return &model.DocChunk{
		Id:           c.Id,
		RelativePath: c.RelativePath,
		Chunk:        c.Chunk,
		ChunkVec:     pgvector.NewVector(c.ChunkVec),
		ChunkIndex:   c.ChunkIndex,
		Metadata:     metadata,
		CreatedAt:    c.CreatedAt,
	}
}

func (m *DocChunkMapper) ToModels(chunks []*entity.DocChunk) []*model.DocChunk {
	models := make([]*model.DocChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
