package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/solarsmart/salesbot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"SOLARSMART_RUNTIME_PATH" envDefault:".solarsmart"`

	// Allow selecting the completion provider
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"groq"`

	// Token budget for the memory section of the prompt. Oldest entries are
	// trimmed first once the budget is exceeded.
	MemoryTokenBudget int `env:"MEMORY_TOKEN_BUDGET" envDefault:"2000"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "memory.db")
}

func (c AppConfig) GetVectorStorePath() string {
	return filepath.Join(c.RuntimePath, "vectorstore")
}
