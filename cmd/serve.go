package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/bgxboard/internal/adapters/http/api"
	"github.com/okian/bgxboard/internal/adapters/http/site"
	"github.com/okian/bgxboard/internal/adapters/http/swagger"
	service "github.com/okian/bgxboard/internal/app"
	"github.com/okian/bgxboard/internal/config"
	"github.com/okian/bgxboard/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), c)
		},
	}
}

// newMux registers every HTTP surface of the dashboard.
func newMux(ctx context.Context, cfg *config.Config, svc *service.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc,
		api.WithServiceInfo(cfg.ServiceName, cfg.Version),
		api.WithRateLimit(cfg.TrackRatePerSec, cfg.TrackBurst),
	).Register(ctx, mux)
	site.NewHandler(svc, site.WithLogger(log.Named("site"))).Register(ctx, mux)
	return mux
}

func runServe(parent context.Context, c *cli) error {
	cfg, log := c.cfg, c.log

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info(ctx, "starting dashboard",
		logger.String("service", cfg.ServiceName),
		logger.String("version", cfg.Version),
		logger.String("resultsDir", cfg.ResultsDir),
		logger.String("visitStore", cfg.VisitStore),
		logger.Int("categories", len(cfg.Categories)),
	)

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	src := newSource(cfg, log)
	svc := newService(cfg, src, store, log)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to start service: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})
	if cfg.WatchResults {
		g.Go(func() error {
			if err := src.Watch(gctx); err != nil {
				log.Warn(gctx, "results watcher disabled", logger.Error(err))
			}
			return nil
		})
	}

	serveErr := g.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	stopErr := svc.Stop(stopCtx)
	if stopErr != nil {
		log.Error(stopCtx, "service stop failed", logger.Error(stopErr))
	}
	log.Info(stopCtx, "server stopped")
	return errors.Join(serveErr, stopErr)
}
