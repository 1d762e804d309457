package main

import (
	"context"
	"fmt"

	"moodtrack/internal/app"

	"github.com/spf13/cobra"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Manage stored data",
}

var dataClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all moods, medications, reminders and the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			ok, err := confirm(cmd, "This permanently deletes all data on this device. Continue?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			if err := a.ClearAllData(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All data cleared.")
			return nil
		})
	},
}

func init() {
	dataCmd.AddCommand(dataClearCmd)
	dataClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
