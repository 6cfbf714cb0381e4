package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/solarsmart/salesbot/internal/config"
	"github.com/solarsmart/salesbot/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "salesbot",
	Short: "SolarSmart, a sales assistant with human-reviewed answers",
	Long:  `SolarSmart answers customer questions about solar products, grounded in the product knowledge base, and defers pricing and contract answers to a human reviewer.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
