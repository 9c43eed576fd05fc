package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// Config holds the server settings
type Config struct {
	Addr          string            `yaml:"addr"`
	DataFile      string            `yaml:"dataFile"`
	Synthesizer   SynthesizerConfig `yaml:"synthesizer"`
	ConsiderSpeed bool              `yaml:"considerSpeed"` // default for route requests that omit it
	ClickRadius   float64           `yaml:"clickRadius"`
	MaxExpansions int               `yaml:"maxExpansions"` // 0 = unlimited
	SearchTimeout time.Duration     `yaml:"searchTimeout"`
	BatchWorkers  int               `yaml:"batchWorkers"`
	LogLevel      string            `yaml:"logLevel"`
	LogFormat     string            `yaml:"logFormat"` // console | json
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Addr:          ":8080",
		DataFile:      "lib/colleges.csv",
		Synthesizer:   DefaultSynthesizerConfig(),
		ClickRadius:   5,
		MaxExpansions: 100000,
		SearchTimeout: 2 * time.Second,
		BatchWorkers:  4,
		LogLevel:      "info",
		LogFormat:     "console",
	}
}

// LoadConfig starts from the defaults, applies the YAML file at path (if
// path is not empty) and then the NAV_* environment variables.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("NAV_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("NAV_DATA"); v != "" {
		c.DataFile = v
	}
	if v := os.Getenv("NAV_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("NAV_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("NAV_CONSIDER_SPEED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: NAV_CONSIDER_SPEED: %v", ErrInvalidConfig, err)
		}
		c.ConsiderSpeed = b
	}
	if v := os.Getenv("NAV_MAX_EXPANSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: NAV_MAX_EXPANSIONS: %v", ErrInvalidConfig, err)
		}
		c.MaxExpansions = n
	}
	if v := os.Getenv("NAV_SEARCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: NAV_SEARCH_TIMEOUT: %v", ErrInvalidConfig, err)
		}
		c.SearchTimeout = d
	}
	return nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if err := c.Synthesizer.Validate(); err != nil {
		return err
	}
	if c.ClickRadius < 0 {
		return fmt.Errorf("%w: clickRadius must be non-negative", ErrInvalidConfig)
	}
	if c.MaxExpansions < 0 {
		return fmt.Errorf("%w: maxExpansions must be non-negative", ErrInvalidConfig)
	}
	if c.SearchTimeout < 0 {
		return fmt.Errorf("%w: searchTimeout must be non-negative", ErrInvalidConfig)
	}
	if c.BatchWorkers <= 0 {
		return fmt.Errorf("%w: batchWorkers must be positive", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logFormat %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
