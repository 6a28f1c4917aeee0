package embedding

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"exhibitrag/internal/domain"
	"exhibitrag/internal/port"
)

// OpenAIEmbedder encodes text via an OpenAI-compatible embeddings endpoint.
// It covers both hosted APIs and local servers (Ollama, llama.cpp) that
// speak the same protocol.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
	batchSize int
}

// NewOpenAIEmbedder creates an embedder against the hosted OpenAI API.
// The API key is read from the given environment variable.
func NewOpenAIEmbedder(apiKeyEnv, model string, dimension, batchSize int) (*OpenAIEmbedder, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key not found in environment variable %s",
			domain.ErrModelUnavailable, apiKeyEnv)
	}
	return newEmbedder(openai.NewClient(apiKey), model, dimension, batchSize)
}

// NewLocalEmbedder creates an embedder against a local OpenAI-compatible
// server such as Ollama serving a sentence-embedding model.
func NewLocalEmbedder(baseURL, model string, dimension, batchSize int) (*OpenAIEmbedder, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}
	cfg := openai.DefaultConfig("local")
	cfg.BaseURL = baseURL
	return newEmbedder(openai.NewClientWithConfig(cfg), model, dimension, batchSize)
}

func newEmbedder(client *openai.Client, model string, dimension, batchSize int) (*OpenAIEmbedder, error) {
	if model == "" {
		return nil, fmt.Errorf("%w: no embedding model configured", domain.ErrModelUnavailable)
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: invalid embedding dimension %d", domain.ErrModelUnavailable, dimension)
	}
	if batchSize <= 0 {
		batchSize = 32
	}
	return &OpenAIEmbedder{
		client:    client,
		model:     model,
		dimension: dimension,
		batchSize: batchSize,
	}, nil
}

// Embed generates embeddings for the given texts, batching requests to keep
// payloads bounded.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	all := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts[i:end],
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: embeddings request failed: %v", domain.ErrModelUnavailable, err)
		}
		if len(resp.Data) != end-i {
			return nil, fmt.Errorf("%w: got %d embeddings for %d inputs",
				domain.ErrModelUnavailable, len(resp.Data), end-i)
		}

		for _, d := range resp.Data {
			if len(d.Embedding) != e.dimension {
				return nil, fmt.Errorf("%w: model returned %d dimensions, configured %d",
					domain.ErrDimensionMismatch, len(d.Embedding), e.dimension)
			}
			all = append(all, d.Embedding)
		}
	}

	return all, nil
}

// Dimension returns the embedding vector dimension.
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns the name of the embedding model.
func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

var _ port.Embedder = (*OpenAIEmbedder)(nil)
