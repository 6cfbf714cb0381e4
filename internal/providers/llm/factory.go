package llm

import (
	"context"
	"fmt"

	"github.com/solarsmart/salesbot/internal/config"
	"github.com/solarsmart/salesbot/internal/core"
	"github.com/solarsmart/salesbot/pkg/log"
)

// NewProvider creates the appropriate CompletionProvider based on configuration.
func NewProvider(ctx context.Context, appCfg *config.AppConfig, cfg *config.LLMConfig) (core.CompletionProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", appCfg.LLMProvider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	switch appCfg.LLMProvider {
	case "groq":
		return NewGroq(cfg.GroqAPIKey, cfg.Model, cfg.Timeout), nil
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model, cfg.Timeout), nil
	case "custom":
		return NewCustomOpenAI(cfg.CustomBaseURL, cfg.CustomAPIKey, cfg.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", appCfg.LLMProvider)
	}
}
