package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocChunk struct {
	Id           uuid.UUID
	RelativePath string
	Chunk        string
	ChunkVec     []float32
	ChunkIndex   int
	Metadata     map[string]interface{}
	CreatedAt    time.Time
}
