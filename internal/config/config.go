package config

import "time"

// Config holds runtime settings for the tetatet client.
//
// Units: every interval is a time.Duration (e.g. 15*time.Second).
type Config struct {
	// ServerBaseURL is the base URL of the backend REST API.
	ServerBaseURL string

	// RequestTimeout bounds every HTTP round trip.
	RequestTimeout time.Duration

	// StaleAfter is the staleness window for cached collections.
	StaleAfter time.Duration

	// FriendsRefetchInterval is the passive refresh interval for the friends
	// list. Presence is derived from it, so keep this at 30s or faster.
	FriendsRefetchInterval time.Duration

	// LogLevel is the zap level name: debug, info, warn, error.
	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 15 * time.Second
	c.StaleAfter = 30 * time.Second
	c.FriendsRefetchInterval = 15 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
