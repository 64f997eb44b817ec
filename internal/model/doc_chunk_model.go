package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// DocChunk is one precomputed row of the document-embedding store
type DocChunk struct {
	Id           uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RelativePath string            `gorm:"type:text;not null;index"`
	Chunk        string            `gorm:"type:text;not null"`
	ChunkVec     pgvector.Vector   `gorm:"type:vector(768)"`
	ChunkIndex   int               `gorm:"default:0"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt    time.Time         `gorm:"autoCreateTime"`
}

func (DocChunk) TableName() string {
	return "docs_chunks_table"
}

// DocChunkIndexes builds the ANN index used by the similarity query
var DocChunkIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_docs_chunks_chunk_vec ON docs_chunks_table USING hnsw (chunk_vec vector_cosine_ops);`,
}
