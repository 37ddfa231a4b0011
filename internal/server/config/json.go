package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/teamkeeper/internal/flagx"
	"github.com/dmitrijs2005/teamkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so they can be written as "15m" or as nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC              string         `json:"endpoint_addr_grpc"`
	DatabaseDriver                string         `json:"database_driver"`
	DatabaseDSN                   string         `json:"database_dsn"`
	RecoveryTokenValidityDuration timex.Duration `json:"recovery_token_validity_duration"`
	LogLevel                      string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config onto config. Keys missing
// from the file keep their current values. An unreadable file or invalid
// JSON panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrGRPC != "" {
		config.EndpointAddrGRPC = c.EndpointAddrGRPC
	}
	if c.DatabaseDriver != "" {
		config.DatabaseDriver = c.DatabaseDriver
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.RecoveryTokenValidityDuration.Duration != 0 {
		config.RecoveryTokenValidityDuration = c.RecoveryTokenValidityDuration.Duration
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
