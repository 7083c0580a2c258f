package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/stockpick/pkg/config"
)

var (
	// Global flags
	rosterPath string
	workers    int
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stockpick",
	Short: "stockpick - S&P 500 종목 추천 CLI",
	Long: `stockpick Unified CLI

Roster → Metric 수집 → ESG 가중 랭킹 파이프라인.
Yahoo Finance에서 종목별 지표를 수집해 사용자 선호에 맞춰 순위를 매깁니다.

Usage:
  go run ./cmd/stockpick [command]

Examples:
  go run ./cmd/stockpick recommend
  go run ./cmd/stockpick recommend --top-n 10 --esg high
  go run ./cmd/stockpick collect --json
  go run ./cmd/stockpick serve
  go run ./cmd/stockpick test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&rosterPath, "roster", "", "roster file, CSV or HTML (default ROSTER_PATH)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "concurrent fetchers (default COLLECT_WORKERS)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads configuration and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if rosterPath != "" {
		cfg.Pipeline.RosterPath = rosterPath
	}
	if workers > 0 {
		cfg.Pipeline.Workers = workers
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}
