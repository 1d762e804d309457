package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"moodtrack/internal/app"
	"moodtrack/internal/tracker"

	"github.com/spf13/cobra"
)

func printEntry(w io.Writer, e *tracker.MoodEntry) {
	name := e.Mood.Name
	if name == "" {
		name = e.Mood.Category
	}
	fmt.Fprintf(w, "#%d  %s  %2d/10  %-15s  %s\n", e.ID, e.Date, e.Mood.Score, e.Mood.Category, name)
	if len(e.Emotions) > 0 {
		names := make([]string, len(e.Emotions))
		for i, em := range e.Emotions {
			names[i] = em.Name
		}
		fmt.Fprintf(w, "    feeling: %s\n", strings.Join(names, ", "))
	}
	if e.Notes != "" {
		fmt.Fprintf(w, "    notes:   %s\n", e.Notes)
	}
}

func printMedicationStatus(w io.Writer, status []tracker.MedicationSnapshot) {
	for _, s := range status {
		mark := " "
		if s.Taken {
			mark = "x"
		}
		fmt.Fprintf(w, "    [%s] %s %s\n", mark, s.Name, s.Dosage)
	}
}

var logCmd = &cobra.Command{
	Use:   "log SCORE",
	Short: "Log today's mood (0-10)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("score must be a number from 0 to 10: %w", err)
		}
		flags := cmd.Flags()
		in := app.MoodInput{Score: score}
		in.Date, _ = flags.GetString("date")
		in.Name, _ = flags.GetString("name")
		in.Emotions, _ = flags.GetStringSlice("emotion")
		in.Notes, _ = flags.GetString("notes")
		in.MedicationsTaken, _ = flags.GetInt64Slice("took")

		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			saved, err := a.LogMood(ctx, in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Saved:")
			printEntry(out, saved)
			printMedicationStatus(out, saved.MedicationsTaken)
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show DATE",
	Short: "Show the mood logged on a date (YYYY-MM-DD)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			return showEntry(ctx, cmd.OutOrStdout(), a, a.MoodOn(ctx, args[0]), "No mood logged on "+args[0]+".")
		})
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's mood",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			return showEntry(ctx, cmd.OutOrStdout(), a, a.TodayMood(ctx), "No mood logged today.")
		})
	},
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent mood",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			return showEntry(ctx, cmd.OutOrStdout(), a, a.LatestMood(ctx), "No moods logged.")
		})
	},
}

func showEntry(ctx context.Context, w io.Writer, a *app.MoodApp, e *tracker.MoodEntry, empty string) error {
	if e == nil {
		fmt.Fprintln(w, empty)
		return nil
	}
	printEntry(w, e)
	printMedicationStatus(w, a.MedicationStatus(ctx, e))
	return nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged moods, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			entries := a.Moods(ctx)
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No moods logged.")
				return nil
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			for i := range entries {
				printEntry(cmd.OutOrStdout(), &entries[i])
			}
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a mood entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			removed, err := a.DeleteMood(ctx, id)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "No mood entry #%d.\n", id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted mood entry #%d.\n", id)
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show moods grouped by month",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			groups := a.History(ctx)
			if len(groups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No moods logged.")
				return nil
			}
			out := cmd.OutOrStdout()
			for _, g := range groups {
				fmt.Fprintf(out, "%s (%d)\n", g.Key, len(g.Entries))
				for i := range g.Entries {
					printEntry(out, &g.Entries[i])
				}
				fmt.Fprintln(out)
			}
			return nil
		})
	},
}

func init() {
	logCmd.Flags().String("date", "", "Date to log for (YYYY-MM-DD, default today)")
	logCmd.Flags().String("name", "", "Mood name (default: the category of the score)")
	logCmd.Flags().StringSliceP("emotion", "e", nil, "Emotion felt (repeatable)")
	logCmd.Flags().StringP("notes", "m", "", "Notes")
	logCmd.Flags().Int64Slice("took", nil, "IDs of medications taken (repeatable)")
	listCmd.Flags().IntP("limit", "n", 0, "Maximum number of entries to show")
}
