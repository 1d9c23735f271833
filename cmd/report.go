package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/bgxboard/internal/domain/analytics"
	"github.com/okian/bgxboard/internal/domain/leaderboard"
)

func newLeaderboardCmd(c *cli) *cobra.Command {
	var (
		category string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the leaderboard of one category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := newService(c.cfg, newSource(c.cfg, c.log), nil, c.log)
			view, err := svc.Leaderboard(cmd.Context(), category)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			return printLeaderboard(cmd.OutOrStdout(), view)
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category key (default: the configured default category)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the view as JSON")
	return cmd
}

func newAnalyticsCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Print visit analytics from the configured visit store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			store, err := openStore(cmd.Context(), c.cfg, c.log)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, store.Close()) }()

			svc := newService(c.cfg, newSource(c.cfg, c.log), store, c.log)
			view, err := svc.Analytics(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			return printAnalytics(cmd.OutOrStdout(), view)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the view as JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func printLeaderboard(out io.Writer, view leaderboard.View) error {
	name := view.CategoryName
	if name == "" {
		name = view.Category
	}
	fmt.Fprintf(out, "%s leaderboard: %d riders, %d races\n", name, view.TotalRiders, view.TotalRaces)
	if view.Empty {
		fmt.Fprintln(out, "No data available for this category.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "Pos\tNo.\tRider\tPoints\tRaces\tBest\tDropped\tWorst race")
	for _, race := range view.Races {
		fmt.Fprintf(w, "\t%s", race.Name)
	}
	fmt.Fprintln(w)
	for _, row := range view.Rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\t%s",
			row.FinalPosition, row.RaceNumber, row.Name, row.TotalPointsDisplay,
			row.RacesParticipated, row.BestPosition, row.WorstDropped, row.WorstRace)
		for _, s := range row.Scores {
			fmt.Fprintf(w, "\t%s", s.Display)
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write leaderboard: %w", err)
	}
	return nil
}

func printAnalytics(out io.Writer, view analytics.View) error {
	fmt.Fprintf(out, "Total visits: %d\nLeaderboard views: %d\n", view.TotalVisits, view.HomeVisits)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	section := func(title string, shares []analytics.Share) {
		fmt.Fprintf(w, "\n%s\n", title)
		for _, s := range shares {
			label := s.Name
			if label == "" {
				label = s.Key
			}
			fmt.Fprintf(w, "  %s\t%s\t%s%%\n", label, strconv.Itoa(s.Count), s.PercentLabel)
		}
	}
	section("Pages", view.Pages)
	section("Devices", view.Devices)
	section("Categories", view.Categories)

	fmt.Fprintf(w, "\nRecent activity\n")
	for _, a := range view.Recent {
		category := a.CategoryName
		if category == "" {
			category = leaderboard.Placeholder
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", a.Display, a.Page, category, a.DeviceType)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write analytics: %w", err)
	}
	return nil
}
