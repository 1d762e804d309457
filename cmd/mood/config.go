package main

import (
	"fmt"

	"moodtrack/internal/app"
	"moodtrack/internal/config"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration, encryption keys and database",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		deviceID := uuid.New().String()
		cfg := config.NewConfig(deviceID, defaults.BaseDir)

		flags := cmd.Flags()
		if v, _ := flags.GetString("storage"); v != "" {
			cfg.Storage.Type = v
		}
		if v, _ := flags.GetString("remote"); v != "" {
			cfg.Remote.Type = v
		}
		if v, _ := flags.GetString("base-url"); v != "" {
			cfg.Remote.BaseURL = v
		}
		if v, _ := flags.GetBool("local-data"); v {
			cfg.Remote.UseLocalData = true
		}
		if cfg.Storage.Type == "filesystem" {
			cfg.Storage.FSRoot = defaults.DataDir
		}

		passphrase, err := readNewPassphrase(cmd, "Passphrase for the session key (empty for none): ")
		if err != nil {
			return err
		}

		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		if err := app.Setup(cmd.Context(), cfg, passphrase); err != nil {
			return fmt.Errorf("setting up: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Fprintf(out, "Device ID: %s\n", deviceID)
		fmt.Fprintf(out, "Base Dir:  %s\n", defaults.BaseDir)
		if passphrase != "" {
			fmt.Fprintf(out, "Set %s to unlock the session key.\n", cfg.Encryption.PassphraseEnv)
		}
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", path)
		fmt.Fprintf(out, "Device ID:   %s\n", cfg.DeviceID)
		fmt.Fprintf(out, "Base Dir:    %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "Log Dir:     %s (level %s)\n", cfg.LogDir, cfg.LogLevel)
		fmt.Fprintf(out, "Storage:     %s\n", describeStorage(cfg.Storage))
		fmt.Fprintf(out, "Remote:      %s\n", describeRemote(cfg.Remote))
		fmt.Fprintf(out, "Encryption:  %s\n", cfg.Encryption.Type)
		fmt.Fprintf(out, "Reminders:   every %ds\n", cfg.Reminders.CheckIntervalSeconds)
		return nil
	},
}

func describeStorage(s config.StorageConfig) string {
	switch s.Type {
	case "sqlite":
		return fmt.Sprintf("sqlite (%s)", s.DataDir)
	case "filesystem":
		return fmt.Sprintf("filesystem (%s)", s.FSRoot)
	case "s3":
		return fmt.Sprintf("s3 (s3://%s/%s)", s.S3Bucket, s.S3Prefix)
	default:
		return s.Type
	}
}

func describeRemote(r config.RemoteConfig) string {
	desc := r.Type
	if r.Type == "http" {
		desc = fmt.Sprintf("http (%s, %ds timeout)", r.BaseURL, r.TimeoutSeconds)
	}
	if r.UseLocalData {
		desc += ", local data only"
	}
	return desc
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("storage", "", "Storage backend: sqlite, filesystem, memory or s3")
	configInitCmd.Flags().String("remote", "", "Remote API: offline, http or none")
	configInitCmd.Flags().String("base-url", "", "Base URL of the remote API (e.g. http://localhost:8000/api)")
	configInitCmd.Flags().Bool("local-data", false, "Never contact the remote API for moods and medications")
}
