// Package config provides configuration loading and management for zarrdivide.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/TuSKan/zarr-divider/zarr"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	Divide struct {
		// IncludeBoundaries duplicates the slice at each split index into
		// both neighbouring layers
		IncludeBoundaries bool `yaml:"includeBoundaries"`

		// HideSource hides the source layer after a successful split
		HideSource bool `yaml:"hideSource"`
	} `yaml:"divide"`

	Output struct {
		// Compressor for written chunks: zstd, zlib, gzip or none
		Compressor string `yaml:"compressor"`

		// SkipEmptyChunks leaves all-zero chunks unwritten
		SkipEmptyChunks bool `yaml:"skipEmptyChunks"`

		// BatchFrames streams the source this many time frames at a time;
		// 0 reads the whole volume at once
		BatchFrames int `yaml:"batchFrames"`
	} `yaml:"output"`

	Logging struct {
		// Verbose enables the diag stream
		Verbose bool `yaml:"verbose"`

		// Trace enables per-chunk logging
		Trace bool `yaml:"trace"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Divide.IncludeBoundaries = false
	cfg.Divide.HideSource = true
	cfg.Output.Compressor = zarr.CompressorZstd
	cfg.Output.SkipEmptyChunks = true
	return cfg
}

// Validate checks values that cannot be expressed by YAML types alone.
func (c *Config) Validate() error {
	if _, err := zarr.NewCompressorConfig(c.Output.Compressor); err != nil {
		return fmt.Errorf("output.compressor: %w", err)
	}
	if c.Output.BatchFrames < 0 {
		return fmt.Errorf("output.batchFrames must not be negative, got %d", c.Output.BatchFrames)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error in config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
