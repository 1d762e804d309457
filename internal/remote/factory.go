package remote

import (
	"fmt"
	"time"

	"moodtrack/internal/config"
	"moodtrack/internal/tracker"
)

// NewRemoteFromConfig builds the remote backend described by cfg. The "none"
// type returns nil, which keeps every repository purely local.
func NewRemoteFromConfig(cfg config.RemoteConfig, clock tracker.Clock, ids tracker.IDGenerator, logger tracker.Logger) (tracker.Remote, error) {
	switch cfg.Type {
	case "none":
		return nil, nil
	case "offline", "":
		return NewOfflineClient(clock, ids), nil
	case "http":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("http remote requires base_url")
		}
		return NewHTTPClient(cfg.BaseURL, time.Duration(cfg.TimeoutSeconds)*time.Second, ids, logger), nil
	default:
		return nil, fmt.Errorf("unsupported remote type: %s", cfg.Type)
	}
}
