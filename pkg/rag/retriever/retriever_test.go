package retriever

import (
	"context"
	"errors"
	"testing"

	"mindease-be/internal/entity"
	"mindease-be/internal/pkg/logger"
	"mindease-be/internal/repository/contract"
	"mindease-be/pkg/embedding"
	"mindease-be/pkg/rag/ragerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	err       error
	lastQuery string
}

func (f *fakeEmbedder) Generate(ctx context.Context, text, taskType string) (*embedding.EmbeddingResponse, error) {
	f.lastQuery = text
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0}}}, nil
}

type fakeSearcher struct {
	rows      []*contract.ScoredDocChunk
	err       error
	lastLimit int
}

func (f *fakeSearcher) SearchSimilarWithScore(ctx context.Context, emb []float32, limit int) ([]*contract.ScoredDocChunk, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.rows) {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

func rows(texts ...string) []*contract.ScoredDocChunk {
	out := make([]*contract.ScoredDocChunk, len(texts))
	for i, t := range texts {
		out[i] = &contract.ScoredDocChunk{
			Chunk:      &entity.DocChunk{RelativePath: "doc.md", Chunk: t},
			Similarity: 1 - float64(i)/10,
		}
	}
	return out
}

func TestRetriever_Retrieve(t *testing.T) {
	all := rows("A. ", "B. ", "C. ", "D. ")

	tests := []struct {
		name       string
		dropLowest bool
		k          int
		wantText   string
		wantChunks int
	}{
		{"all rows k=4", false, 4, "A. B. C. D. ", 4},
		{"all rows k=1", false, 1, "A. ", 1},
		{"drop lowest k=4", true, 4, "A. B. C. ", 3},
		{"drop lowest k=2", true, 2, "A. ", 1},
		{"drop lowest k=1", true, 1, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSearcher{rows: all}
			r := NewRetriever(&fakeEmbedder{}, s, logger.NewNopLogger(), tt.dropLowest)

			res, err := r.Retrieve(context.Background(), "What is X?", tt.k)
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, res.Text)
			assert.Len(t, res.Chunks, tt.wantChunks)
			assert.Equal(t, tt.k, s.lastLimit)
		})
	}
}

func TestRetriever_StripsQuotes(t *testing.T) {
	s := &fakeSearcher{rows: rows("It's common. ", "Don't panic.")}
	r := NewRetriever(&fakeEmbedder{}, s, logger.NewNopLogger(), false)

	res, err := r.Retrieve(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Equal(t, "Its common. Dont panic.", res.Text)
	assert.Equal(t, "doc.md", res.Chunks[0].SourcePath)
	assert.InDelta(t, 1.0, res.Chunks[0].Similarity, 1e-9)
}

func TestRetriever_EmptyResult(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{}, &fakeSearcher{}, logger.NewNopLogger(), true)
	res, err := r.Retrieve(context.Background(), "q", 4)
	require.NoError(t, err)
	assert.Empty(t, res.Text)
	assert.Empty(t, res.Chunks)
}

func TestRetriever_RemoteFailures(t *testing.T) {
	boom := errors.New("connection refused")

	_, err := NewRetriever(&fakeEmbedder{err: boom}, &fakeSearcher{}, logger.NewNopLogger(), false).
		Retrieve(context.Background(), "q", 4)
	assert.ErrorIs(t, err, ragerr.ErrRemoteQuery)
	assert.ErrorIs(t, err, boom)

	_, err = NewRetriever(&fakeEmbedder{}, &fakeSearcher{err: boom}, logger.NewNopLogger(), false).
		Retrieve(context.Background(), "q", 4)
	var re *ragerr.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "similarity", re.Op)
}
