package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/stockpick/internal/contracts"
	"github.com/wonny/stockpick/internal/preferences"
	"github.com/wonny/stockpick/pkg/logger"
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "종목 추천 실행",
	Long: `Roster의 모든 종목 지표를 수집한 뒤 선호에 맞춰 상위 N개 종목을 추천합니다.

선호 입력:
- 플래그 (--top-n, --esg, --stock-type) 가 있으면 플래그 사용
- --prefs 파일 (YAML) 이 있으면 파일 사용
- 그 외에는 터미널에서 질문

Example:
  go run ./cmd/stockpick recommend
  go run ./cmd/stockpick recommend --top-n 10 --esg high
  go run ./cmd/stockpick recommend --prefs prefs.yaml --json`,
	RunE: runRecommend,
}

var (
	prefsFile     string
	topN          int
	esgImportance string
	stockType     string
	recommendJSON bool
)

func init() {
	rootCmd.AddCommand(recommendCmd)

	// Flags
	recommendCmd.Flags().StringVar(&prefsFile, "prefs", "", "preferences YAML file")
	recommendCmd.Flags().IntVar(&topN, "top-n", 0, "number of top stocks to recommend")
	recommendCmd.Flags().StringVar(&esgImportance, "esg", "", "ESG importance (high|medium|low)")
	recommendCmd.Flags().StringVar(&stockType, "stock-type", "", "stock type (risky|not risky)")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "print the recommendation as JSON")
}

// preferenceResolver picks the preference source from the flags
func preferenceResolver(cmd *cobra.Command) contracts.PreferenceResolver {
	flags := cmd.Flags()
	if flags.Changed("top-n") || flags.Changed("esg") || flags.Changed("stock-type") {
		return preferences.NewStatic(contracts.Preferences{
			StockType:     stockType,
			TopN:          topN,
			ESGImportance: contracts.ESGImportance(esgImportance),
		})
	}
	if prefsFile != "" {
		return preferences.NewFile(prefsFile)
	}
	return preferences.NewPrompt(cmd.InOrStdin(), cmd.OutOrStdout())
}

func runRecommend(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire components
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if !recommendJSON {
		PrintHeader(out, "Stock Recommendation", [][2]string{
			{"Roster", cfg.Pipeline.RosterPath},
			{"Workers", fmt.Sprintf("%d", cfg.Pipeline.Workers)},
			{"Pacing", cfg.Pipeline.PacingInterval.String()},
		})
		fmt.Fprintln(out, "Fetching stock performance data...")
	}

	// 4. Run pipeline
	result, err := a.orchestrator.Run(ctx, a.runConfig, preferenceResolver(cmd))
	if err != nil {
		return err
	}

	if recommendJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Recommendation)
	}

	PrintSkipped(out, result.Batch.Skipped)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Top Recommended Stocks:")
	PrintSeparator(out)
	PrintRanked(out, result.Recommendation.Results)
	PrintSeparator(out)

	PrintKeyValue(out, "Run ID", result.Recommendation.ID, 8)
	PrintKeyValue(out, "Stocks", fmt.Sprintf("%d ranked / %d collected", len(result.Recommendation.Results), len(result.Batch.Metrics)), 8)
	if a.repo != nil {
		PrintSuccess(out, "Recommendation saved")
	}
	PrintSuccess(out, fmt.Sprintf("Completed in %.2fs", result.Duration.Seconds()))

	return nil
}
