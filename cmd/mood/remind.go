package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"moodtrack/internal/app"
	"moodtrack/internal/reminder"

	"github.com/spf13/cobra"
)

// terminalNotifier prints reminders to the terminal with a bell.
type terminalNotifier struct {
	w io.Writer
}

func (n terminalNotifier) Notify(_ context.Context, r reminder.Reminder) error {
	_, err := fmt.Fprintf(n.w, "\a[%s] %s: %s\n", time.Now().Format("15:04"), r.Title, r.Body)
	return err
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Manage reminders",
}

var remindSetCmd = &cobra.Command{
	Use:   "set mood HH:MM | set meds on|off",
	Short: "Set the daily mood reminder or toggle medication reminders",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			prefs := a.Reminders()
			if err := prefs.EnableNotifications(ctx); err != nil {
				return err
			}
			switch args[0] {
			case "mood":
				at, err := reminder.ParseTimeOfDay(args[1])
				if err != nil {
					return err
				}
				if _, err := prefs.SetMoodReminder(ctx, at); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Mood reminder set for %s every day.\n", at)
			case "meds":
				var on bool
				switch args[1] {
				case "on":
					on = true
				case "off":
				default:
					return fmt.Errorf("expected on or off, got %q", args[1])
				}
				if err := a.SetMedicationReminders(ctx, on); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Medication reminders %s.\n", args[1])
			default:
				return fmt.Errorf("unknown reminder %q (want mood or meds)", args[0])
			}
			return nil
		})
	},
}

var remindCancelCmd = &cobra.Command{
	Use:   "cancel [mood|all]",
	Short: "Cancel the mood reminder, or every reminder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		which := "mood"
		if len(args) == 1 {
			which = args[0]
		}
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			prefs := a.Reminders()
			switch which {
			case "mood":
				if err := prefs.CancelMoodReminder(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Mood reminder canceled.")
			case "all":
				if err := prefs.DisableNotifications(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All reminders canceled.")
			default:
				return fmt.Errorf("unknown reminder %q (want mood or all)", which)
			}
			return nil
		})
	},
}

var remindStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show reminder settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			prefs := a.Reminders()
			out := cmd.OutOrStdout()

			enabled, err := prefs.NotificationsEnabled(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Notifications:        %s\n", onOff(enabled))

			at, ok, err := prefs.MoodReminder(ctx)
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintf(out, "Mood reminder:        %s\n", at)
			} else {
				fmt.Fprintf(out, "Mood reminder:        off (default would be %s)\n", reminder.DefaultMoodReminder)
			}

			meds, err := prefs.MedicationRemindersEnabled(ctx)
			if err != nil {
				return err
			}
			ids, err := prefs.MedicationReminderIDs(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Medication reminders: %s (%d scheduled)\n", onOff(meds), len(ids))
			return nil
		})
	},
}

var remindRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Deliver reminders in the foreground until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			fmt.Fprintln(cmd.ErrOrStderr(), "Waiting for reminders. Press Ctrl-C to stop.")
			return a.NewScheduler(terminalNotifier{w: cmd.OutOrStdout()}).Run(ctx)
		})
	},
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func init() {
	remindCmd.AddCommand(remindSetCmd, remindCancelCmd, remindStatusCmd, remindRunCmd)
}
