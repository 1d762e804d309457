package main

import (
	"context"
	"fmt"
	"strconv"

	"moodtrack/internal/app"
	"moodtrack/internal/tracker"

	"github.com/spf13/cobra"
)

var medCmd = &cobra.Command{
	Use:   "med",
	Short: "Manage medications",
}

var medListCmd = &cobra.Command{
	Use:   "list",
	Short: "List medications",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			meds := a.Medications(ctx)
			if len(meds) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No medications.")
				return nil
			}
			for _, m := range meds {
				fmt.Fprintf(cmd.OutOrStdout(), "#%d  %-15s %-8s %-12s %s\n", m.ID, m.Name, m.Dosage, m.Frequency, m.Time)
				if m.Notes != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", m.Notes)
				}
			}
			return nil
		})
	},
}

// medicationFromFlags overlays the flags that were set onto base.
func medicationFromFlags(cmd *cobra.Command, base tracker.Medication) tracker.Medication {
	flags := cmd.Flags()
	for name, dst := range map[string]*string{
		"name":      &base.Name,
		"dosage":    &base.Dosage,
		"frequency": &base.Frequency,
		"time":      &base.Time,
		"notes":     &base.Notes,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	return base
}

var medAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a medication",
	RunE: func(cmd *cobra.Command, args []string) error {
		med := medicationFromFlags(cmd, tracker.Medication{})
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			added, err := a.AddMedication(ctx, med)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added medication #%d %s.\n", added.ID, added.Name)
			return nil
		})
	},
}

var medUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update a medication",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			current := a.Medication(ctx, id)
			if current == nil {
				return fmt.Errorf("medication %d: %w", id, tracker.ErrNotFound)
			}
			updated, err := a.UpdateMedication(ctx, medicationFromFlags(cmd, *current))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated medication #%d %s.\n", updated.ID, updated.Name)
			return nil
		})
	},
}

var medDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a medication",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			if err := a.DeleteMedication(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted medication #%d.\n", id)
			return nil
		})
	},
}

func init() {
	medCmd.AddCommand(medListCmd, medAddCmd, medUpdateCmd, medDeleteCmd)
	for _, c := range []*cobra.Command{medAddCmd, medUpdateCmd} {
		c.Flags().String("name", "", "Medication name")
		c.Flags().String("dosage", "", "Dosage, e.g. 300mg")
		c.Flags().String("frequency", "", "How often, e.g. \"Twice daily\"")
		c.Flags().String("time", "", "Dose times, e.g. \"9:00 AM, 9:00 PM\"")
		c.Flags().String("notes", "", "Notes")
	}
	medAddCmd.MarkFlagRequired("name")
	medAddCmd.MarkFlagRequired("dosage")
	medAddCmd.MarkFlagRequired("frequency")
}
