// Package config loads the YAML file that drives adapter selection, bench
// emulation defaults, and the optional scan-history stores.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level, nested-struct-with-yaml-tags shape: one section
// per subsystem, mirroring the teacher's own config layout.
type Config struct {
	Adapter struct {
		// LibraryPath overrides auto-detection; empty means "try every
		// registry-discovered adapter, then connection.DefaultLibraryPath".
		LibraryPath string `yaml:"libraryPath"`
	} `yaml:"adapter"`

	Bench struct {
		// AutoEnable is parsed from the config file; no command in this
		// module reads it, so bench mode is only entered through
		// ToggleBenchMode.
		AutoEnable bool `yaml:"autoEnable"`
		// SwapForBroadcastSeconds is the fixed duration SwapForBroadcast
		// holds the raw-CAN channel open on single-channel-only adapters.
		SwapForBroadcastSeconds int `yaml:"swapForBroadcastSeconds"`
	} `yaml:"bench"`

	Security struct {
		// Constants is an optional five-byte vendor constant, returned by
		// SecurityConstants. The orchestrator's security flows always use
		// internal/security.JLRConstants and do not read this value.
		Constants [5]byte `yaml:"constants"`
	} `yaml:"security"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	Datastore struct {
		DumpDir string `yaml:"dumpDir"`
		SQLite  struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
		InfluxDB struct {
			Enabled bool   `yaml:"enabled"`
			URL     string `yaml:"url"`
			Org     string `yaml:"org"`
			Bucket  string `yaml:"bucket"`
			Token   string `yaml:"token"`
		} `yaml:"influxdb"`
	} `yaml:"datastore"`
}

// LoadConfig reads and parses the YAML config file at filename.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if cfg.Bench.SwapForBroadcastSeconds == 0 {
		cfg.Bench.SwapForBroadcastSeconds = 30
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	return &cfg, nil
}

// SecurityConstants returns the configured vendor constants with
// useDefault=false, or a zero array with useDefault=true if the config
// file left them unset.
func (c *Config) SecurityConstants() (constants [5]byte, useDefault bool) {
	if c.Security.Constants == ([5]byte{}) {
		return [5]byte{}, true
	}
	return c.Security.Constants, false
}
