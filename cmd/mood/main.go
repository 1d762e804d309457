package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"moodtrack/internal/app"
	"moodtrack/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file from the default location.
func loadConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, "", fmt.Errorf("reading config (run `mood config init` first): %w", err)
	}
	return cfg, defaults.ConfigPath, nil
}

// newApp reads the config and creates a MoodApp. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "mood log").
func newApp(ctx context.Context, operation string) (*app.MoodApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var passphrase string
	if cfg.Encryption.PassphraseEnv != "" {
		passphrase = os.Getenv(cfg.Encryption.PassphraseEnv)
	}

	a, err := app.NewMoodApp(ctx, cfg, operation, app.Options{Passphrase: passphrase})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// withApp runs fn against a fresh MoodApp and records its outcome on the operation.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.MoodApp) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cmd.CommandPath())
	if err != nil {
		return err
	}
	defer a.Close()

	err = fn(ctx, a)
	a.Operation().Fail(err)
	return err
}

var rootCmd = &cobra.Command{
	Use:          "mood",
	Short:        "Mood and medication tracker",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(loginCmd, registerCmd, loginGoogleCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(logCmd, showCmd, todayCmd, latestCmd, listCmd, deleteCmd, historyCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(medCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(dataCmd)
}
