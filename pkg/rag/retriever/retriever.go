package retriever

import (
	"context"
	"strings"

	"mindease-be/internal/pkg/logger"
	"mindease-be/internal/repository/contract"
	"mindease-be/pkg/embedding"
	"mindease-be/pkg/rag/ragerr"
	"mindease-be/pkg/store"
	"mindease-be/pkg/utils"
)

// ChunkSearcher is the ranked-similarity query over the chunk store
type ChunkSearcher interface {
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredDocChunk, error)
}

// Result is the concatenated context plus the rows it was built from
type Result struct {
	Text   string
	Chunks []store.RetrievedChunk
}

type Retriever struct {
	embedder embedding.EmbeddingProvider
	searcher ChunkSearcher
	logger   logger.ILogger

	// DropLowest concatenates only the first len(rows)-1 chunks, so k=1 yields no context
	DropLowest bool
}

func NewRetriever(embedder embedding.EmbeddingProvider, searcher ChunkSearcher, log logger.ILogger, dropLowest bool) *Retriever {
	return &Retriever{
		embedder:   embedder,
		searcher:   searcher,
		logger:     log,
		DropLowest: dropLowest,
	}
}

// Retrieve embeds query and returns the text of the k most similar chunks.
// No rows is not an error: the result text is empty.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (Result, error) {
	emb, err := r.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return Result{}, ragerr.Remote("embed", err)
	}

	rows, err := r.searcher.SearchSimilarWithScore(ctx, emb.Embedding.Values, k)
	if err != nil {
		return Result{}, ragerr.Remote("similarity", err)
	}

	if len(rows) == 0 {
		r.logger.Warn("RETRIEVER", ragerr.ErrEmptyRetrieval.Error(), map[string]interface{}{
			"query": query,
			"k":     k,
		})
		return Result{Chunks: []store.RetrievedChunk{}}, nil
	}

	used := len(rows)
	if r.DropLowest {
		used--
	}

	chunks := make([]store.RetrievedChunk, 0, used)
	var b strings.Builder
	for _, row := range rows[:used] {
		text := utils.StripQuotes(row.Chunk.Chunk)
		b.WriteString(text)
		chunks = append(chunks, store.RetrievedChunk{
			SourcePath: row.Chunk.RelativePath,
			ChunkText:  text,
			Similarity: row.Similarity,
		})
	}

	r.logger.Debug("RETRIEVER", "Chunks retrieved", map[string]interface{}{
		"k":        k,
		"returned": len(rows),
		"used":     used,
	})

	return Result{Text: b.String(), Chunks: chunks}, nil
}
