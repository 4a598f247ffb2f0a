// Package config loads skillpack settings from .skillpackrc files,
// SKILLPACK_ environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/dotcommander/skillpack/internal/rules"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ConfigFiles are checked in order in the working directory.
var ConfigFiles = []string{".skillpackrc.json", ".skillpackrc.yaml", ".skillpackrc.yml"}

// Config represents the skillpack configuration
type Config struct {
	Verbose         bool     `mapstructure:"verbose"`
	Quiet           bool     `mapstructure:"quiet"`
	Strict          bool     `mapstructure:"strict"`
	Format          string   `mapstructure:"format"`
	Yes             bool     `mapstructure:"yes"`
	NoColor         bool     `mapstructure:"noColor"`
	PackagerVersion string   `mapstructure:"packagerVersion"`
	ManifestVersion string   `mapstructure:"manifestVersion"`
	LargeAssetBytes int64    `mapstructure:"largeAssetBytes"`
	Exclude         []string `mapstructure:"exclude"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("strict", false)
	v.SetDefault("format", FormatText)
	v.SetDefault("yes", false)
	v.SetDefault("noColor", false)
	v.SetDefault("packagerVersion", "1.0")
	v.SetDefault("manifestVersion", "1.0")
	v.SetDefault("largeAssetBytes", rules.Default().LargeAssetBytes)
	v.SetDefault("exclude", []string{})
}

// LoadConfig loads configuration from the first config file found in the
// working directory, the environment and any flags already bound to v.
func LoadConfig(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	for _, path := range ConfigFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
		break
	}

	v.SetEnvPrefix("SKILLPACK")
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Format != FormatText && config.Format != FormatJSON {
		return fmt.Errorf("invalid format: %s. Must be 'text' or 'json'", config.Format)
	}

	if config.LargeAssetBytes < 1 {
		return errors.New("largeAssetBytes must be at least 1")
	}

	if config.PackagerVersion == "" || config.ManifestVersion == "" {
		return errors.New("packagerVersion and manifestVersion must not be empty")
	}

	for _, pattern := range config.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern: %q", pattern)
		}
	}

	return nil
}

// RuleSet returns the standard rule set adjusted by the configuration.
func (c *Config) RuleSet() rules.RuleSet {
	rs := rules.Default().WithExclusions(c.Exclude...)
	rs.LargeAssetBytes = c.LargeAssetBytes
	return rs
}
