package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/solarsmart/salesbot/pkg/log"
)

// TelegramConfig configures the optional reviewer bot. An empty token
// disables the transport.
type TelegramConfig struct {
	Token      string `env:"TELEGRAM_TOKEN"`
	ReviewerID int64  `env:"TELEGRAM_REVIEWER_ID"`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}

func (c TelegramConfig) Enabled() bool {
	return c.Token != "" && c.ReviewerID != 0
}
