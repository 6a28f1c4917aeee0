package embedding

import (
	"fmt"

	"exhibitrag/config"
	"exhibitrag/internal/domain"
	"exhibitrag/internal/port"
)

// FromConfig constructs the embedder selected by configuration.
func FromConfig(cfg config.EmbeddingConfig) (port.Embedder, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIEmbedder(cfg.APIKeyEnv, cfg.Model, cfg.Dimension, cfg.BatchSize)
	case "ollama", "local":
		return NewLocalEmbedder(cfg.BaseURL, cfg.Model, cfg.Dimension, cfg.BatchSize)
	case "hash":
		return NewHashEmbedder(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q",
			domain.ErrModelUnavailable, cfg.Provider)
	}
}
