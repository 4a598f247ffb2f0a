package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// chdirTemp switches to an empty temporary directory for the test.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() {
		_ = os.Chdir(oldWd)
	})
	return tmpDir
}

func TestLoadConfigDefaults(t *testing.T) {
	chdirTemp(t)

	config, err := LoadConfig(viper.New())
	require.NoError(t, err)

	assert.Equal(t, FormatText, config.Format)
	assert.False(t, config.Verbose)
	assert.False(t, config.Quiet)
	assert.False(t, config.Strict)
	assert.False(t, config.Yes)
	assert.False(t, config.NoColor)
	assert.Equal(t, "1.0", config.PackagerVersion)
	assert.Equal(t, "1.0", config.ManifestVersion)
	assert.Equal(t, int64(10*1024*1024), config.LargeAssetBytes)
	assert.Empty(t, config.Exclude)
}

func TestLoadConfigFromJSON(t *testing.T) {
	dir := chdirTemp(t)
	data, err := json.Marshal(map[string]any{
		"verbose":         true,
		"format":          "json",
		"packagerVersion": "2.0",
		"largeAssetBytes": 1024,
		"exclude":         []string{"*.psd"},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".skillpackrc.json"), data, 0o644))

	config, err := LoadConfig(viper.New())
	require.NoError(t, err)

	assert.True(t, config.Verbose)
	assert.Equal(t, FormatJSON, config.Format)
	assert.Equal(t, "2.0", config.PackagerVersion)
	assert.Equal(t, int64(1024), config.LargeAssetBytes)
	assert.Equal(t, []string{"*.psd"}, config.Exclude)
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := chdirTemp(t)
	data, err := yaml.Marshal(map[string]any{
		"strict":  true,
		"noColor": true,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".skillpackrc.yaml"), data, 0o644))

	config, err := LoadConfig(viper.New())
	require.NoError(t, err)

	assert.True(t, config.Strict)
	assert.True(t, config.NoColor)
}

func TestLoadConfigFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SKILLPACK_QUIET", "true")
	t.Setenv("SKILLPACK_FORMAT", "json")

	config, err := LoadConfig(viper.New())
	require.NoError(t, err)

	assert.True(t, config.Quiet)
	assert.Equal(t, FormatJSON, config.Format)
}

func TestLoadConfigMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".skillpackrc.json"), []byte("{not json"), 0o644))

	_, err := LoadConfig(viper.New())
	assert.ErrorContains(t, err, "error reading config file")
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		return Config{Format: FormatText, PackagerVersion: "1.0", ManifestVersion: "1.0", LargeAssetBytes: 1}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad format", func(c *Config) { c.Format = "markdown" }, "invalid format"},
		{"zero threshold", func(c *Config) { c.LargeAssetBytes = 0 }, "largeAssetBytes"},
		{"empty version", func(c *Config) { c.ManifestVersion = "" }, "must not be empty"},
		{"bad pattern", func(c *Config) { c.Exclude = []string{"[x"} }, "invalid exclude pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := validateConfig(&c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfigRuleSet(t *testing.T) {
	c := &Config{LargeAssetBytes: 42, Exclude: []string{"*.psd"}}

	rs := c.RuleSet()

	assert.Equal(t, int64(42), rs.LargeAssetBytes)
	assert.Contains(t, rs.Exclusions, "*.psd")
	assert.Contains(t, rs.Exclusions, "TESTING_GUIDE")
}
