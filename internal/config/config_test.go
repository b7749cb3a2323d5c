package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a configuration that passes validation
func validConfig() *Config {
	return &Config{
		Convert: ConvertConfig{},
		Output: OutputConfig{
			Format: "json",
			Path:   "-",
		},
		Database: DatabaseConfig{
			Path:         "~/.config/dlfelis/database.db",
			QueryTimeout: "30s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
			File:   "~/.config/dlfelis/logs/dlfelis.log",
		},
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "-", cfg.Output.Path)
	assert.Equal(t, "~/.config/dlfelis/database.db", cfg.Database.Path)
	assert.Equal(t, "30s", cfg.Database.QueryTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.False(t, cfg.Convert.PlainDescriptions)
}

func TestLoadConfigDefaults(t *testing.T) {
	// Point at a config file that does not exist so only defaults apply
	t.Setenv("DLFELIS_CONFIG", filepath.Join(t.TempDir(), "missing.json"))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "-", cfg.Output.Path)
	assert.False(t, cfg.Convert.PlainDescriptions)
	assert.Equal(t, "30s", cfg.Database.QueryTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
}

func TestLoadConfigFromFile(t *testing.T) {
	// Create temporary config file
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.json")

	testConfig := map[string]interface{}{
		"convert": map[string]interface{}{
			"plain_descriptions": true,
		},
		"output": map[string]interface{}{
			"format": "sql",
			"path":   "/custom/out/schema.sql",
		},
		"database": map[string]interface{}{
			"path":          "/custom/path/db.db",
			"query_timeout": "60s",
		},
		"logging": map[string]interface{}{
			"level":  "debug",
			"format": "json",
			"output": "file",
			"file":   "/custom/log/path.log",
		},
	}

	data, err := json.MarshalIndent(testConfig, "", "  ")
	require.NoError(t, err)

	err = os.WriteFile(configPath, data, 0600)
	require.NoError(t, err)

	// Test loading
	config := &Config{}
	err = loadConfigFromFile(config, configPath)
	require.NoError(t, err)

	assert.True(t, config.Convert.PlainDescriptions)
	assert.Equal(t, "sql", config.Output.Format)
	assert.Equal(t, "/custom/out/schema.sql", config.Output.Path)
	assert.Equal(t, "/custom/path/db.db", config.Database.Path)
	assert.Equal(t, "60s", config.Database.QueryTimeout)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
	assert.Equal(t, "file", config.Logging.Output)
	assert.Equal(t, "/custom/log/path.log", config.Logging.File)
}

func TestLoadConfigFromFileInvalidJSON(t *testing.T) {
	// Create temporary config file with invalid JSON
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.json")

	err := os.WriteFile(configPath, []byte("invalid json"), 0600)
	require.NoError(t, err)

	config := &Config{}
	err = loadConfigFromFile(config, configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("DLFELIS_CONFIG", filepath.Join(t.TempDir(), "missing.json"))

	envVars := map[string]string{
		"DLFELIS_CONVERT_PLAIN_DESCRIPTIONS": "true",
		"DLFELIS_OUTPUT_FORMAT":              "csv",
		"DLFELIS_OUTPUT_PATH":                "/env/out",
		"DLFELIS_DB_PATH":                    "/env/db/path.db",
		"DLFELIS_DB_QUERY_TIMEOUT":           "45s",
		"DLFELIS_LOG_LEVEL":                  "warn",
		"DLFELIS_LOG_FORMAT":                 "json",
		"DLFELIS_LOG_OUTPUT":                 "stdout",
	}

	for key, value := range envVars {
		t.Setenv(key, value)
	}

	config, err := LoadConfig()
	require.NoError(t, err)

	// Verify overrides were applied
	assert.True(t, config.Convert.PlainDescriptions)
	assert.Equal(t, "csv", config.Output.Format)
	assert.Equal(t, "/env/out", config.Output.Path)
	assert.Equal(t, "/env/db/path.db", config.Database.Path)
	assert.Equal(t, "45s", config.Database.QueryTimeout)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
	assert.Equal(t, "stdout", config.Logging.Output)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := validConfig()

	overrides := map[string]interface{}{
		"output":             "/flag/out/schema.json",
		"format":             "sql",
		"plain-descriptions": true,
		"db-path":            "/flag/db/path.db",
		"log-level":          "error",
		"log-format":         "json",
	}

	err := applyFlagOverrides(config, overrides)
	require.NoError(t, err)

	assert.Equal(t, "/flag/out/schema.json", config.Output.Path)
	assert.Equal(t, "sql", config.Output.Format)
	assert.True(t, config.Convert.PlainDescriptions)
	assert.Equal(t, "/flag/db/path.db", config.Database.Path)
	assert.Equal(t, "error", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
}

func TestApplyFlagOverridesIgnoresEmptyStrings(t *testing.T) {
	config := validConfig()

	err := applyFlagOverrides(config, map[string]interface{}{
		"output": "",
		"format": "",
	})
	require.NoError(t, err)

	assert.Equal(t, "-", config.Output.Path)
	assert.Equal(t, "json", config.Output.Format)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name          string
		modifyConfig  func(*Config)
		expectError   bool
		errorContains string
	}{
		{
			name: "valid config",
			modifyConfig: func(_ *Config) {
				// No modifications - should be valid
			},
			expectError: false,
		},
		{
			name: "invalid output format",
			modifyConfig: func(c *Config) {
				c.Output.Format = "yaml"
			},
			expectError:   true,
			errorContains: "invalid output format",
		},
		{
			name: "invalid log level",
			modifyConfig: func(c *Config) {
				c.Logging.Level = "invalid"
			},
			expectError:   true,
			errorContains: "invalid log level",
		},
		{
			name: "invalid log format",
			modifyConfig: func(c *Config) {
				c.Logging.Format = "invalid"
			},
			expectError:   true,
			errorContains: "invalid log format",
		},
		{
			name: "invalid log output",
			modifyConfig: func(c *Config) {
				c.Logging.Output = "invalid"
			},
			expectError:   true,
			errorContains: "invalid log output",
		},
		{
			name: "invalid database timeout",
			modifyConfig: func(c *Config) {
				c.Database.QueryTimeout = "invalid"
			},
			expectError:   true,
			errorContains: "invalid database query timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.modifyConfig(config)

			err := validateConfig(config)
			if tt.expectError {
				assert.Error(t, err)

				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "absolute path",
			input:    "/absolute/path",
			expected: "/absolute/path",
		},
		{
			name:     "relative path",
			input:    "relative/path",
			expected: "relative/path",
		},
		{
			name:     "home directory only",
			input:    "~",
			expected: os.Getenv("HOME"),
		},
		{
			name:     "home directory with path",
			input:    "~/config/file.json",
			expected: filepath.Join(os.Getenv("HOME"), "config/file.json"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.expected == os.Getenv("HOME") && tt.expected == "" {
				// Skip test if HOME is not set
				t.Skip("HOME environment variable not set")
			}

			result := expandPath(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfigExpandAllPaths(t *testing.T) {
	config := &Config{
		Database: DatabaseConfig{
			Path: "~/db/test.db",
		},
		Logging: LoggingConfig{
			File: "~/logs/app.log",
		},
	}

	config.ExpandAllPaths()

	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		t.Skip("HOME environment variable not set")
	}

	assert.Equal(t, filepath.Join(homeDir, "db/test.db"), config.Database.Path)
	assert.Equal(t, filepath.Join(homeDir, "logs/app.log"), config.Logging.File)
}

func TestSaveConfig(t *testing.T) {
	// Use a temporary config path to avoid interference with other tests
	tempConfigPath := filepath.Join(t.TempDir(), "test_config.json")
	t.Setenv("DLFELIS_CONFIG", tempConfigPath)

	config := validConfig()
	config.Database.Path = "/custom/path"
	config.Logging.Level = "debug"

	err := SaveConfig(config)
	require.NoError(t, err)

	// Verify file was created and contains expected data
	data, err := os.ReadFile(tempConfigPath)
	require.NoError(t, err)

	var loadedConfig Config
	err = json.Unmarshal(data, &loadedConfig)
	require.NoError(t, err)

	assert.Equal(t, config.Database.Path, loadedConfig.Database.Path)
	assert.Equal(t, config.Logging.Level, loadedConfig.Logging.Level)
}

func TestLoadConfigWithFilePrecedence(t *testing.T) {
	// A config file value wins over the built-in default, and an
	// environment variable wins over the file.
	tempConfigPath := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("DLFELIS_CONFIG", tempConfigPath)

	fileConfig := map[string]interface{}{
		"output": map[string]interface{}{
			"format": "csv",
		},
		"logging": map[string]interface{}{
			"level": "debug",
		},
	}

	data, err := json.Marshal(fileConfig)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(tempConfigPath, data, 0600))

	t.Setenv("DLFELIS_LOG_LEVEL", "error")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "csv", config.Output.Format, "file value should win over default")
	assert.Equal(t, "error", config.Logging.Level, "environment should win over file")
	assert.Equal(t, "30s", config.Database.QueryTimeout, "untouched fields keep defaults")
}

func TestMergeConfigs(t *testing.T) {
	target := validConfig()
	source := &Config{
		Database: DatabaseConfig{
			Path: "/new/path",
		},
		Logging: LoggingConfig{
			Level: "debug",
		},
	}

	mergeConfigs(target, source)

	assert.Equal(t, "/new/path", target.Database.Path)
	assert.Equal(t, "debug", target.Logging.Level)
	// Other values should remain from target
	assert.Equal(t, "30s", target.Database.QueryTimeout)
	assert.Equal(t, "text", target.Logging.Format)
}
