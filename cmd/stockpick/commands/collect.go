package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stockpick/pkg/logger"
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "지표 수집만 실행 (랭킹 없음)",
	Long: `Roster의 모든 종목 지표를 수집해 출력합니다. 결과는 저장하지 않습니다.

Example:
  go run ./cmd/stockpick collect
  go run ./cmd/stockpick collect --roster sp500_companies.html --workers 4 --json`,
	RunE: runCollect,
}

var collectJSON bool

func init() {
	rootCmd.AddCommand(collectCmd)

	// Flags
	collectCmd.Flags().BoolVar(&collectJSON, "json", false, "print the batch as JSON")
}

func runCollect(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()
	batch, err := a.orchestrator.Collect(ctx, a.runConfig)
	if batch == nil {
		return err
	}
	// 중단된 경우에도 부분 결과는 출력
	if err != nil {
		log.WithError(err).Warn("Collection interrupted, printing partial batch")
	}

	if collectJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(batch); encErr != nil {
			return encErr
		}
		return err
	}

	PrintHeader(out, "Metric Collection", [][2]string{
		{"Roster", cfg.Pipeline.RosterPath},
		{"Collected", fmt.Sprintf("%d", len(batch.Metrics))},
		{"Skipped", fmt.Sprintf("%d", len(batch.Skipped))},
	})
	PrintMetrics(out, batch)
	PrintSkipped(out, batch.Skipped)
	PrintSuccess(out, fmt.Sprintf("Completed in %.2fs", time.Since(start).Seconds()))

	return err
}
