// Package config loads yfass's daemon-level configuration: the bind
// address, filesystem root, and base hostname the CLI accepts, optionally
// defaulted from a YAML file before flags are applied on top.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the daemon's operational settings. Unlike function
// config.json (strict JSON, §6), this file is an ambient convenience and
// its format is not part of the wire contract.
type Config struct {
	BindAddr     string `yaml:"bind_addr"`
	Root         string `yaml:"root"`
	BaseHost     string `yaml:"base_host"`
	BwrapPath    string `yaml:"bwrap_path"`
	LogLevel     string `yaml:"log_level"`
	TokenTTLDays int    `yaml:"token_ttl_days"`
}

func defaults() *Config {
	return &Config{
		BindAddr:     ":8080",
		BwrapPath:    "bwrap",
		LogLevel:     "info",
		TokenTTLDays: 10,
	}
}

// Load reads path (if non-empty and present) as YAML into a Config seeded
// with defaults. A missing file is not an error — the defaults stand.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyFlag overwrites field with value when value is non-zero, giving
// flags precedence over the loaded file.
func ApplyFlag[T comparable](field *T, value T) {
	var zero T
	if value != zero {
		*field = value
	}
}
