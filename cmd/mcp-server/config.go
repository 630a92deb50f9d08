package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the server settings. Zero fields fall back to defaults.
type Config struct {
	Port            int    `yaml:"port" json:"port"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec" json:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec" json:"write_timeout_sec"`
	IdleTimeoutSec  int    `yaml:"idle_timeout_sec" json:"idle_timeout_sec"`
	MaxBodyBytes    int64  `yaml:"max_body_bytes" json:"max_body_bytes"`
	LogLevel        string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Port:            8080,
		ReadTimeoutSec:  15,
		WriteTimeoutSec: 15,
		IdleTimeoutSec:  60,
		MaxBodyBytes:    1 << 20,
		LogLevel:        "info",
	}
}

// FromFile loads configuration from a file, auto-detecting format by
// extension. Supported extensions: .yaml, .yml, .json. Fields omitted in
// the file keep their defaults.
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses YAML data into a Config on top of the defaults.
func FromYAML(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, cfg.validate()
}

// FromJSON parses JSON data into a Config on top of the defaults.
func FromJSON(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max_body_bytes: %d", c.MaxBodyBytes)
	}
	return nil
}
