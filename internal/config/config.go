// Package config loads simulation settings from a YAML file, with
// defaults for every field so running with no file at all works.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable settings for a simulation run.
type Config struct {
	Seed            int64   `yaml:"seed"`
	StartingCapital float64 `yaml:"starting_capital"`
	DefaultPenalty  float64 `yaml:"default_penalty"`
	DBPath          string  `yaml:"db_path"`
	APIPort         int     `yaml:"api_port"`
	AdminKey        string  `yaml:"admin_key"`
	CommandRate     int     `yaml:"command_rate"` // admin commands per hour per caller
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		Seed:            42,
		StartingCapital: 100_000_000,
		DefaultPenalty:  5_000_000,
		DBPath:          "tradewinds.db",
		APIPort:         8080,
		CommandRate:     600,
	}
}

// Load reads a config file, layering it over the defaults. A missing file
// is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.StartingCapital <= 0 {
		cfg.StartingCapital = Default().StartingCapital
	}
	if cfg.DefaultPenalty <= 0 {
		cfg.DefaultPenalty = Default().DefaultPenalty
	}
	if cfg.CommandRate <= 0 {
		cfg.CommandRate = Default().CommandRate
	}
	return cfg, nil
}
