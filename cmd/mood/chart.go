package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"moodtrack/internal/app"
	"moodtrack/internal/tracker"

	"github.com/spf13/cobra"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Chart moods over time",
}

// drawSeries prints one bar per point. Points without data print a dot, not a zero bar.
func drawSeries(w io.Writer, points []tracker.Point) {
	if len(points) == 0 {
		fmt.Fprintln(w, "No moods logged in this period.")
		return
	}
	for _, p := range points {
		if !p.Present {
			fmt.Fprintf(w, "%4s | .\n", p.Label)
			continue
		}
		bar := strings.Repeat("#", int(p.Score+0.5))
		fmt.Fprintf(w, "%4s | %-10s %4.1f  %s\n", p.Label, bar, p.Score, tracker.CategoryForScore(int(p.Score+0.5)).Name)
	}
}

var chartMonthCmd = &cobra.Command{
	Use:   "month [YYYY-MM]",
	Short: "Daily moods for a month",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		full, _ := cmd.Flags().GetBool("full")
		pad, _ := cmd.Flags().GetInt("pad")
		if full {
			pad = -1
		}

		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			month := time.Now()
			if len(args) == 1 {
				var err error
				if month, err = time.Parse("2006-01", args[0]); err != nil {
					return fmt.Errorf("month must be YYYY-MM: %w", err)
				}
			} else if today, err := time.Parse(tracker.DateLayout, a.Today()); err == nil {
				month = today
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", month.Month(), month.Year())
			drawSeries(cmd.OutOrStdout(), a.MonthSeries(ctx, month.Year(), month.Month(), pad))
			return nil
		})
	},
}

var chartYearCmd = &cobra.Command{
	Use:   "year [YYYY]",
	Short: "Monthly average moods for a year",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			year := time.Now().Year()
			if len(args) == 1 {
				y, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("year must be a number: %w", err)
				}
				year = y
			} else if today, err := time.Parse(tracker.DateLayout, a.Today()); err == nil {
				year = today.Year()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", year)
			drawSeries(cmd.OutOrStdout(), a.YearSeries(ctx, year))
			return nil
		})
	},
}

func init() {
	chartCmd.AddCommand(chartMonthCmd, chartYearCmd)
	chartMonthCmd.Flags().Int("pad", 2, "Days shown around the logged span")
	chartMonthCmd.Flags().Bool("full", false, "Show every day of the month")
}
