// Package config loads the confounds configuration file
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/creasty/defaults"
	"github.com/ethpandaops/confounds/pkg/batch"
	"github.com/ethpandaops/confounds/pkg/output"
	"github.com/ethpandaops/confounds/pkg/regressors"
	"github.com/ethpandaops/confounds/pkg/strategy"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// AppName names the XDG configuration directory
const AppName = "confounds"

// FileName is the configuration file looked up in the working directory and
// the XDG configuration directory
const FileName = "config.yaml"

var (
	// ErrInvalidLogLevel is returned when the logging level cannot be parsed
	ErrInvalidLogLevel = errors.New("invalid logging level")
)

// Config is the complete confounds configuration
type Config struct {
	// Logging level
	Logging string `yaml:"logging" default:"info"`
	// MetricsAddr serves Prometheus metrics when set
	MetricsAddr string `yaml:"metricsAddr"`

	// Strategy to resolve; the minimal preset when nothing is configured
	Strategy strategy.Spec `yaml:"strategy"`
	// Defaults for parameters a strategy leaves unset
	Defaults strategy.Defaults `yaml:"defaults"`
	// Assembly options
	Assembly regressors.Options `yaml:"assembly"`

	Batch  batch.Config  `yaml:"batch"`
	Output output.Config `yaml:"output"`
}

// Default returns the configuration used when no file is found
func Default() (*Config, error) {
	config := &Config{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	config.applyStrategyDefault()

	return config, nil
}

// Load reads a configuration file over the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	if path != "" {
		yamlFile, err := os.ReadFile(path) //nolint:gosec // User-provided config file path
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(yamlFile, config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	config.applyStrategyDefault()

	return config, nil
}

// Find returns the configuration file to use: explicit when set, otherwise
// ./config.yaml, otherwise config.yaml in the XDG configuration directory.
// It returns an empty path when none exists.
func Find(explicit string) string {
	if explicit != "" {
		return explicit
	}

	for _, candidate := range []string{FileName, filepath.Join(Dir(), FileName)} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

// Dir returns the XDG configuration directory for confounds
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks every section
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Logging); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, c.Logging)
	}

	if err := c.Defaults.Validate(); err != nil {
		return err
	}

	if err := c.Batch.Validate(); err != nil {
		return err
	}

	if err := c.Output.Validate(); err != nil {
		return err
	}

	// structural checks only; columns are checked per table
	s, err := c.Strategy.Build()
	if err != nil {
		return err
	}

	if _, err := strategy.Validate(s, c.Defaults, nil); err != nil {
		return err
	}

	return nil
}

func (c *Config) applyStrategyDefault() {
	if c.Strategy.Preset == "" && len(c.Strategy.Categories) == 0 {
		c.Strategy.Preset = strategy.PresetMinimal
	}
}
