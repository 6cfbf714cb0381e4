package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/solarsmart/salesbot/pkg/log"
)

// ApprovalConfig holds the sensitive-topic keyword set for the approval
// gate. The set is configuration, never caller input.
type ApprovalConfig struct {
	Keywords []string `env:"APPROVAL_KEYWORDS" envSeparator:"," envDefault:"price,cost,contract,quote"`
}

func NewApprovalConfig(ctx context.Context) *ApprovalConfig {
	c := &ApprovalConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Approval config")
	}
	return c
}
