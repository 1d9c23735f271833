package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/bgxboard/internal/simulate"
)

func newSimulateCmd(c *cli) *cobra.Command {
	cfg := simulate.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Post synthetic page views to a running dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("categories") {
				cfg.Categories = c.cfg.Categories.Keys()
			}
			stats, err := simulate.Run(cmd.Context(), cfg, simulate.WithLogger(c.log.Named("simulate")))
			if stats != nil {
				fmt.Fprintf(cmd.OutOrStdout(),
					"submitted=%d accepted=%d duplicate=%d rate_limited=%d failed=%d visits=%d->%d in %s\n",
					stats.Submitted, stats.Accepted, stats.Duplicate, stats.RateLimited, stats.Failed,
					stats.VisitsBefore, stats.VisitsAfter, stats.Duration.Round(time.Millisecond))
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "target", cfg.BaseURL, "Base URL of the dashboard")
	f.IntVar(&cfg.Visits, "visits", cfg.Visits, "Number of page views to post")
	f.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Concurrent requests in flight")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	f.Float64Var(&cfg.HomeShare, "home-share", cfg.HomeShare, "Fraction of views on the leaderboard page")
	f.Float64Var(&cfg.Duplicates, "duplicates", cfg.Duplicates, "Fraction of views re-sending an earlier visit_id")
	f.StringSliceVar(&cfg.Categories, "categories", nil, "Category keys for leaderboard views (default: configured categories)")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Seed of the visit generator")
	f.DurationVar(&cfg.Settle, "settle", cfg.Settle, "How long to wait for analytics to count accepted views")
	return cmd
}
