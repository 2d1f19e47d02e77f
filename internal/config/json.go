package config

import (
	"encoding/json"
	"os"

	"github.com/akaliniv/tetatet/internal/flagx"
	"github.com/akaliniv/tetatet/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerBaseURL          string         `json:"server_base_url"`
	RequestTimeout         timex.Duration `json:"request_timeout"`
	StaleAfter             timex.Duration `json:"stale_after"`
	FriendsRefetchInterval timex.Duration `json:"friends_refetch_interval"`
	LogLevel               string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from a JSON file resolved via
// the -c/-config flags. When no file is given the function returns without
// touching cfg; read or unmarshal errors panic (caller may recover).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFilePath()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.StaleAfter.Duration > 0 {
		cfg.StaleAfter = jc.StaleAfter.Duration
	}
	if jc.FriendsRefetchInterval.Duration > 0 {
		cfg.FriendsRefetchInterval = jc.FriendsRefetchInterval.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
