// Package config handles reading and writing .tars/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .tars/config.yaml.
type Config struct {
	Version int           `yaml:"version"`
	Project ProjectConfig `yaml:"project"`
	Context ContextConfig `yaml:"context"`
	Store   StoreConfig   `yaml:"store"`
	Reports ReportsConfig `yaml:"reports"`
}

// ProjectConfig holds project metadata supplied during init.
type ProjectConfig struct {
	Name     string `yaml:"name"`
	Language string `yaml:"language"`
}

// ContextConfig controls the pre-drafting context retrievals.
type ContextConfig struct {
	RecentChanges int `yaml:"recent_changes"` // commits fetched per intake
	TimeoutMs     int `yaml:"timeout_ms"`     // per-retrieval timeout
}

// StoreConfig controls session persistence.
type StoreConfig struct {
	Path string `yaml:"path"` // relative to .tars/
}

// ReportsConfig controls where validated artifacts are written.
type ReportsConfig struct {
	Dir string `yaml:"dir"` // relative to .tars/
}

const configDir = ".tars"
const configFile = "config.yaml"

// ReadConfig reads .tars/config.yaml from the given project directory.
// dir is the project root (not .tars/ itself).
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// WriteConfig writes cfg to .tars/config.yaml in the given project directory.
// Creates the .tars/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Context: ContextConfig{
			RecentChanges: 10,
			TimeoutMs:     5000,
		},
		Store: StoreConfig{
			Path: "tars.db",
		},
		Reports: ReportsConfig{
			Dir: "reports",
		},
	}
}
