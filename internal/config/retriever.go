package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/solarsmart/salesbot/pkg/log"
)

type RetrieverConfig struct {
	Collection string        `env:"RAG_COLLECTION" envDefault:"solar_smart_docs"`
	TopK       int           `env:"RAG_TOP_K" envDefault:"5"`
	Timeout    time.Duration `env:"RAG_TIMEOUT" envDefault:"15s"`

	// Embeddings come from an OpenAI-compatible /v1/embeddings endpoint.
	EmbeddingBaseURL string `env:"EMBEDDING_BASE_URL" envDefault:"https://api.openai.com"`
	EmbeddingAPIKey  string `env:"EMBEDDING_API_KEY"`
	EmbeddingModel   string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
}

func NewRetrieverConfig(ctx context.Context) *RetrieverConfig {
	c := &RetrieverConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Retriever config")
	}
	return c
}
