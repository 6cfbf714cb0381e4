package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solarsmart/salesbot/internal/core"
)

// overridable at build time with -ldflags "-X main.version=..."
var version = core.AppVersion

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the salesbot version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s (%s)\n", core.AppName, version, core.RepositoryURL)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
