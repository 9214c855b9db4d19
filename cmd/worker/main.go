package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	pgRepo "autopress/internal/infra/adapter/persistence/postgres"
	"autopress/internal/infra/crosspost"
	"autopress/internal/infra/db"
	"autopress/internal/infra/mirror"
	workerPkg "autopress/internal/infra/worker"
	"autopress/internal/observability/logging"
	"autopress/internal/pkg/config"
	"autopress/internal/usecase/publish"
	"autopress/internal/usecase/schedule"
)

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Create context for graceful shutdown of the HTTP sidecars
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerConfig := workerPkg.LoadConfig(logger)
	logger.Info("worker configuration loaded",
		slog.Duration("interval", workerConfig.Interval),
		slog.Duration("initial_delay", workerConfig.InitialDelay),
		slog.Duration("cycle_timeout", workerConfig.CycleTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	metrics := workerPkg.NewMetrics()
	runner := setupRunner(logger, database)

	// Start metrics HTTP server
	startMetricsServer(ctx, logger, workerConfig.MetricsPort)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	startScheduler(logger, runner, workerConfig, metrics, healthServer)
}

// initLogger initializes the structured logger and installs it as the
// process default so library code logging via slog shares it.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and applies migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// setupRunner wires the repositories, the external integrations and the
// publication pipeline into a cycle runner.
func setupRunner(logger *slog.Logger, database *sql.DB) *publish.Runner {
	artRepo := pgRepo.NewArticleRepo(database)
	setRepo := pgRepo.NewSettingRepo(database)

	mirrorTimeout := config.GetEnvDuration("MIRROR_HTTP_TIMEOUT", 30*time.Second)
	mirrorClient := mirror.NewClient(mirrorTimeout)
	logger.Info("mirror client initialized", slog.Duration("timeout", mirrorTimeout))

	// The cross-post integration is optional. When disabled the pipeline
	// still publishes, it just skips the social post.
	instagramConfig := loadInstagramConfig(logger)
	var crossPoster publish.CrossPoster
	if instagramConfig.Enabled {
		crossPoster = crosspost.NewClient(instagramConfig)
		logger.Info("cross-post client initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("cross-post client disabled")
	}

	syncer := publish.NewExternalSync(artRepo, setRepo, mirrorClient, crossPoster)
	pipeline := publish.NewPipeline(artRepo, syncer)
	return publish.NewRunner(artRepo, syncer, pipeline)
}

// loadInstagramConfig loads cross-post configuration from environment
// variables.
//
// Environment variables:
//   - INSTAGRAM_ENABLED: Boolean flag to enable cross-posting (default: false)
//   - INSTAGRAM_ACCESS_TOKEN: Graph API access token (required if enabled)
//   - INSTAGRAM_ACCOUNT_ID: Business account identifier (required if enabled)
//   - INSTAGRAM_HTTP_TIMEOUT: Per-request timeout (default: 60s)
func loadInstagramConfig(logger *slog.Logger) crosspost.InstagramConfig {
	enabled := os.Getenv("INSTAGRAM_ENABLED") == "true"
	accessToken := os.Getenv("INSTAGRAM_ACCESS_TOKEN")
	accountID := os.Getenv("INSTAGRAM_ACCOUNT_ID")

	if !enabled {
		return crosspost.InstagramConfig{Enabled: false}
	}
	if accessToken == "" || accountID == "" {
		logger.Warn("INSTAGRAM_ENABLED is true but credentials are missing, cross-posting disabled")
		return crosspost.InstagramConfig{Enabled: false}
	}

	return crosspost.InstagramConfig{
		Enabled:     true,
		AccessToken: accessToken,
		AccountID:   accountID,
		Timeout:     config.GetEnvDuration("INSTAGRAM_HTTP_TIMEOUT", 60*time.Second),
	}
}

// startScheduler arms the publication scheduler and blocks forever.
func startScheduler(logger *slog.Logger, runner *publish.Runner, cfg *workerPkg.Config, metrics *workerPkg.Metrics, healthServer *workerPkg.HealthServer) {
	scheduler := schedule.New(cfg.Interval,
		func(ctx context.Context) {
			runPublishCycle(ctx, runner, cfg, metrics)
		},
		schedule.WithInitialDelay(cfg.InitialDelay),
		schedule.WithSkipHook(metrics.RecordSkippedTick),
	)

	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	// Mark as ready once the scheduler is armed
	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started", slog.Duration("interval", cfg.Interval))
	select {}
}

// runPublishCycle executes a single publication cycle with timeout and
// metrics recording. A cycle with any per-article failure counts as a
// failure run even though the remaining articles were still processed.
func runPublishCycle(ctx context.Context, runner *publish.Runner, cfg *workerPkg.Config, metrics *workerPkg.Metrics) {
	cycleCtx, cancel := context.WithTimeout(ctx, cfg.CycleTimeout)
	defer cancel()

	stats := runner.RunOnce(cycleCtx)

	status := "success"
	if stats.Failed > 0 {
		status = "failure"
	}
	metrics.RecordCycle(status, stats.Duration, stats.Published, stats.Failed)
}
