package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables that override the default locations.
const (
	EnvConfigPath = "MOOD_CONFIG_PATH"
	EnvHome       = "MOOD_HOME"
)

// Defaults are the default locations of the config file and mood data.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
	DataDir    string
	KeysDir    string
}

// GetDefaults returns application default paths, checking environment variables first.
//   - MOOD_CONFIG_PATH: config file location (default: ~/.config/mood.toml)
//   - MOOD_HOME: base directory for mood data (default: ~/.local/share/mood)
func GetDefaults() (Defaults, error) {
	configPath := os.Getenv(EnvConfigPath)
	baseDir := os.Getenv(EnvHome)

	if configPath == "" || baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Defaults{}, fmt.Errorf("cannot determine home directory: %w", err)
		}
		if configPath == "" {
			configPath = filepath.Join(home, ".config", "mood.toml")
		}
		if baseDir == "" {
			baseDir = filepath.Join(home, ".local", "share", "mood")
		}
	}

	return Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
		DataDir:    filepath.Join(baseDir, "db"),
		KeysDir:    filepath.Join(baseDir, "keys"),
	}, nil
}
