package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/stockpick/internal/api"
	"github.com/wonny/stockpick/internal/api/handlers"
	"github.com/wonny/stockpick/internal/pipeline"
	"github.com/wonny/stockpick/internal/scheduler"
	"github.com/wonny/stockpick/internal/scheduler/jobs"
	"github.com/wonny/stockpick/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- 시작 시 지표 배치 수집 (백그라운드)
- REFRESH_SCHEDULE 에 따라 배치 재수집
- 최신 배치에 대한 랭킹 요청 처리

Endpoints:
  GET  /health                    - Health check
  GET  /api/metrics               - 최신 지표 배치
  POST /api/recommendations       - 랭킹 실행
  GET  /api/recommendations       - 최근 추천 이력
  GET  /api/recommendations/{id}  - 추천 결과 조회
  GET  /api/jobs                  - 스케줄 작업 상태

Example:
  go run ./cmd/stockpick serve
  go run ./cmd/stockpick serve --port 8080`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (default PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
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

	// 4. Scheduler with the metric refresh job
	snapshot := pipeline.NewSnapshot()
	sched := scheduler.New(log)
	refresh := jobs.NewMetricRefreshJob(a.orchestrator, snapshot, a.runConfig, cfg.Pipeline.RefreshSchedule, log)
	if err := sched.AddJob(refresh); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	// 시작 시 첫 배치 수집, 완료 전까지 랭킹 요청은 503
	go func() {
		if _, err := sched.RunJob(refresh.Name()); err != nil {
			log.WithError(err).Error("Initial metric collection failed")
		}
	}()

	// 5. Router and server
	router := api.NewRouter(api.Handlers{
		Recommendations: handlers.NewRecommendationHandler(a.orchestrator, snapshot, a.repo, log),
		Metrics:         handlers.NewMetricsHandler(snapshot, log),
		Jobs:            handlers.NewJobsHandler(sched),
	}, log)
	server := api.New(cfg, log, router)

	fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}
