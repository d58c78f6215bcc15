// FILE: src/internal/config/config.go
package config

import (
	"fmt"

	"tracesift/src/internal/core"
)

type Config struct {
	Extraction ExtractionConfig `toml:"extraction"`
	Server     ServerConfig     `toml:"server"`
	Logging    *LogConfig       `toml:"logging"`

	// Quiet suppresses all console output
	Quiet bool `toml:"quiet"`
}

// ExtractionConfig tunes the trace extraction pipeline. The merge window
// and the lone single-line noise filter mirror the engine defaults; they
// are configuration, not architecture.
type ExtractionConfig struct {
	// Convention forces a parser: "traceback", "framestack",
	// "panicdump", "sentence". Empty means auto-detect.
	Convention string `toml:"convention"`

	// MergeWindowSeconds is the timestamp-proximity threshold for
	// folding adjacent trace fragments into one incident.
	MergeWindowSeconds int64 `toml:"merge_window_seconds"`

	// KeepLoneSingles disables the trailing single-line noise filter.
	KeepLoneSingles bool `toml:"keep_lone_singles"`

	// PayloadMarker introduces an embedded JSON payload in free text.
	PayloadMarker string `toml:"payload_marker"`

	// MostRecentOnly reduces the output to the single latest incident.
	MostRecentOnly bool `toml:"most_recent_only"`

	// Output selects the incident renderer: "raw" or "json".
	Output string `toml:"output"`
}

// ServerConfig gates the optional HTTP extraction endpoint.
type ServerConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int64  `toml:"port"`

	// MaxBodyMB bounds an /extract request body.
	MaxBodyMB int64 `toml:"max_body_mb"`

	RateLimit RateLimitConfig `toml:"rate_limit"`
}

// RateLimitConfig is per-client token-bucket limiting for the endpoint.
type RateLimitConfig struct {
	Enabled                bool    `toml:"enabled"`
	RequestsPerSecond      float64 `toml:"requests_per_second"`
	Burst                  int64   `toml:"burst"`
	CleanupIntervalSeconds int64   `toml:"cleanup_interval_seconds"`
}

var validConventions = map[string]bool{
	"": true, "traceback": true, "framestack": true,
	"panicdump": true, "sentence": true,
}

func (c *Config) validate() error {
	if !validConventions[c.Extraction.Convention] {
		return fmt.Errorf("invalid convention: %s", c.Extraction.Convention)
	}
	if c.Extraction.MergeWindowSeconds < 1 {
		return fmt.Errorf("merge window too small: %d s", c.Extraction.MergeWindowSeconds)
	}
	if c.Extraction.Output != "raw" && c.Extraction.Output != "json" && c.Extraction.Output != "" {
		return fmt.Errorf("invalid output format: %s", c.Extraction.Output)
	}

	if c.Server.Enabled {
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			return fmt.Errorf("invalid server port: %d", c.Server.Port)
		}
		if c.Server.MaxBodyMB < 1 {
			return fmt.Errorf("server body limit must be positive: %d", c.Server.MaxBodyMB)
		}
		if c.Server.RateLimit.Enabled {
			if c.Server.RateLimit.RequestsPerSecond <= 0 {
				return fmt.Errorf("rate limit rps must be positive: %f", c.Server.RateLimit.RequestsPerSecond)
			}
			if c.Server.RateLimit.Burst < 1 {
				return fmt.Errorf("rate limit burst must be positive: %d", c.Server.RateLimit.Burst)
			}
		}
	}

	if c.Logging != nil {
		return validateLogConfig(c.Logging)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			MergeWindowSeconds: core.DefaultMergeWindowSeconds,
			PayloadMarker:      core.DefaultPayloadMarker,
			Output:             "raw",
		},
		Server: ServerConfig{
			Enabled:   false,
			Host:      "127.0.0.1",
			Port:      8440,
			MaxBodyMB: 16,
			RateLimit: RateLimitConfig{
				Enabled:                true,
				RequestsPerSecond:      10,
				Burst:                  20,
				CleanupIntervalSeconds: 300,
			},
		},
		Logging: DefaultLogConfig(),
	}
}
