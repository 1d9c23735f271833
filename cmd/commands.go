package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/bgxboard/internal/adapters/repository"
	"github.com/okian/bgxboard/internal/adapters/source"
	service "github.com/okian/bgxboard/internal/app"
	"github.com/okian/bgxboard/internal/config"
	"github.com/okian/bgxboard/internal/domain/analytics"
	"github.com/okian/bgxboard/internal/domain/leaderboard"
	"github.com/okian/bgxboard/internal/domain/results"
	"github.com/okian/bgxboard/internal/domain/schedule"
	"github.com/okian/bgxboard/pkg/logger"
)

// cli carries what every command needs once the root pre-run has loaded it.
type cli struct {
	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "bgxboard",
		Short: "BGX championship leaderboards and visit analytics",
		Long: `bgxboard serves per-category championship leaderboards built from
result CSV files, and records page views for visit analytics.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), c)
		},
	}

	root.AddCommand(
		newServeCmd(c),
		newLeaderboardCmd(c),
		newAnalyticsCmd(c),
		newSimulateCmd(c),
	)
	return root
}

// init loads configuration and the global logger. Logs go to stderr so that
// report commands keep stdout for their output.
func (c *cli) init(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	c.cfg = cfg
	c.log = logger.Get()
	return nil
}

// newSource builds the CSV results source of cfg.
func newSource(cfg *config.Config, log logger.Logger) *source.CSVSource {
	return source.NewCSVSource(cfg.ResultsDir,
		source.WithCacheTTL(cfg.RowCacheTTL()),
		source.WithLogger(log.Named("csv-source")),
	)
}

// openStore opens the configured visit store.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, error) {
	store, err := repository.Open(ctx, cfg.VisitStore, cfg.VisitStorePath,
		repository.WithLogger(log.Named("visit-store")))
	if err != nil {
		return nil, fmt.Errorf("open %s visit store: %w", cfg.VisitStore, err)
	}
	return store, nil
}

// newService wires the dashboard service from cfg.
func newService(cfg *config.Config, src service.ResultSource, store repository.Store, log logger.Logger) *service.Service {
	orderer := schedule.New(cfg.RaceSchedule)
	return service.New(
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.EventQueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithCategories(cfg.Categories, cfg.DefaultCategory),
		service.WithSource(src),
		service.WithStore(store),
		service.WithBuilder(results.NewBuilder(
			results.WithOrderer(orderer),
			results.WithRacePrefix(cfg.RaceColumnPrefix),
		)),
		service.WithProjector(leaderboard.NewProjector(
			leaderboard.WithTopScoreThreshold(cfg.TopScoreThreshold),
			leaderboard.WithCategories(cfg.Categories),
		)),
		service.WithAggregator(analytics.NewAggregator(
			analytics.WithRecentLimit(cfg.RecentActivityLimit),
			analytics.WithCategories(cfg.Categories),
		)),
	)
}
