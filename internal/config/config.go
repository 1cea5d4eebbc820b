// Package config loads the scan configuration: regions to inventory, page
// sizing, and which edge checkers run.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_scan.yaml
var defaultConfigYAML []byte

// ScanConfig controls one discovery run.
type ScanConfig struct {
	// Regions overrides region discovery when non-empty.
	Regions []string `yaml:"regions"`

	// DefaultRegion is the fallback when region discovery fails.
	DefaultRegion string `yaml:"default_region"`

	// PageSize is the Lambda ListFunctions page size.
	PageSize int32 `yaml:"page_size"`

	// Checkers maps checker names to enable flags. Checkers not listed
	// default to enabled.
	Checkers map[string]bool `yaml:"checkers"`
}

// Load reads scan configuration from YAML.
// If configPath is empty, uses the embedded default config.
func Load(configPath string) (*ScanConfig, error) {
	data := defaultConfigYAML
	if configPath != "" {
		fileData, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
		data = fileData
	}

	var cfg ScanConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DefaultRegion == "" {
		cfg.DefaultRegion = "us-east-1"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 25
	}

	return &cfg, nil
}

// CheckerEnabled reports whether a checker should run. Unlisted checkers are
// enabled.
func (c *ScanConfig) CheckerEnabled(name string) bool {
	if c.Checkers == nil {
		return true
	}
	enabled, ok := c.Checkers[name]
	if !ok {
		return true
	}
	return enabled
}
