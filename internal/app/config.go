package app

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DocPath string `yaml:"doc"` // .hcl file or a directory of them
	OutPath string `yaml:"out"` // empty means the App's output writer

	LogFormat string `yaml:"log_format"` // text, json or auto
	LogLevel  string `yaml:"log_level"`
	Indent    int    `yaml:"indent"` // tab level the rendering starts at
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.DocPath == "" {
		return nil, errors.New("DocPath is a required configuration field and cannot be empty")
	}
	switch cfg.LogFormat {
	case "", "text", "json", "auto":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text', 'json' or 'auto'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.Indent < 0 {
		return nil, fmt.Errorf("invalid indent %d: must not be negative", cfg.Indent)
	}
	return &cfg, nil
}

// LoadConfigFile reads a YAML config file. The result is not validated;
// callers merge flags over it and then call NewConfig.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
