package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cageside/picks-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "picks-cli",
	Short: "MMA analyst pick aggregation and Q&A",
	Long:  "Aggregates MMA analyst predictions into bounded contexts and answers natural-language questions about fights, consensus, finishes, and underdogs via Claude.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
