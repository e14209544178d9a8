package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/CTAG07/Drosera/pkg/passgen"
	"github.com/natefinch/atomic"
)

// Config is the top-level configuration for the CLI.
type Config struct {
	LogLevel          string  `json:"log_level"`
	DataDir           string  `json:"data_dir"`
	StorePath         string  `json:"store_path"`
	DefaultOrder      int     `json:"default_order"`
	DefaultCount      int     `json:"default_count"`
	DefaultLength     int     `json:"default_length"`
	AttemptsPerSecond float64 `json:"attempts_per_second"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:          "info",
		DataDir:           "./data",
		StorePath:         "./data/drosera_runs.db?_journal_mode=WAL&_busy_timeout=5000",
		DefaultOrder:      3,
		DefaultCount:      100,
		DefaultLength:     12,
		AttemptsPerSecond: passgen.DefaultAttemptsPerSecond,
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		// If the file doesn't exist, create it with the default config.
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Log a warning instead of failing, as the CLI can still run with defaults.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}
