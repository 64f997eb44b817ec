package embedding

import (
	"context"
	"fmt"
	"math"
)

// Dimensions matches the chunk_vec column width
const Dimensions = 768

const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}

type Params struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

func NewProvider(p Params) (EmbeddingProvider, error) {
	switch p.Provider {
	case "ollama", "":
		return NewOllamaProvider(p.BaseURL, p.Model), nil
	case "gemini":
		if p.APIKey == "" {
			return nil, fmt.Errorf("gemini embedding requires an API key")
		}
		return NewGeminiProvider(p.APIKey, p.Model), nil
	case "openai":
		if p.APIKey == "" {
			return nil, fmt.Errorf("openai embedding requires an API key")
		}
		return NewOpenAIProvider(p.APIKey, p.BaseURL, p.Model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", p.Provider)
	}
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

// normalizeVector scales vec to unit length; pgvector cosine distance assumes it
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
