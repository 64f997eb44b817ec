package mapper

import (
	"testing"
	"time"

	"mindease-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDocChunkMapper(t *testing.T) {
	m := NewDocChunkMapper()
	assert.Nil(t, m.ToEntity(nil))
	assert.Nil(t, m.ToModel(nil))

	in := &entity.DocChunk{
		Id:           uuid.New(),
		RelativePath: "anxiety/overview.md",
		Chunk:        "Anxiety disorders are common.",
		ChunkVec:     []float32{0.6, 0.8},
		ChunkIndex:   2,
		Metadata:     map[string]interface{}{"source": "who"},
		CreatedAt:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	out := m.ToEntity(m.ToModel(in))
	assert.Equal(t, in, out)

	noMeta := m.ToModel(&entity.DocChunk{RelativePath: "a.md"})
	assert.Nil(t, noMeta.Metadata)
}
