package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level reposcan configuration.
type Config struct {
	Budgets     Budgets     `mapstructure:"budgets"`
	Exclude     []string    `mapstructure:"exclude"`
	FailExclude FailExclude `mapstructure:"fail_exclude"`
	Workers     int         `mapstructure:"workers"`
	Output      Output      `mapstructure:"output"`
	Watch       Watch       `mapstructure:"watch"`
}

// Budgets defines the warning thresholds.
type Budgets struct {
	MaxFunctionLines int `mapstructure:"max_function_lines"`
	MaxFileLines     int `mapstructure:"max_file_lines"`
	ComplexityWarn   int `mapstructure:"complexity_warn"`
}

// FailExclude defines path prefixes skipped by budget enforcement.
type FailExclude struct {
	Functions  []string `mapstructure:"functions"`
	Complexity []string `mapstructure:"complexity"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
}

// Watch defines settings for the watch loop.
type Watch struct {
	Debounce  string `mapstructure:"debounce"`
	CacheSize int    `mapstructure:"cache_size"`
}

// DebounceDuration parses Debounce, falling back to the default on error.
func (w Watch) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultWatch.Debounce)
	}
	return d
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location),
// applies SCAN_* environment overrides, and returns a validated Config.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults.
	v.SetDefault("budgets.max_function_lines", DefaultBudgets.MaxFunctionLines)
	v.SetDefault("budgets.max_file_lines", DefaultBudgets.MaxFileLines)
	v.SetDefault("budgets.complexity_warn", DefaultBudgets.ComplexityWarn)
	v.SetDefault("exclude", []string{})
	v.SetDefault("fail_exclude.functions", DefaultFailExclude.Functions)
	v.SetDefault("fail_exclude.complexity", DefaultFailExclude.Complexity)
	v.SetDefault("workers", 0)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("watch.debounce", DefaultWatch.Debounce)
	v.SetDefault("watch.cache_size", DefaultWatch.CacheSize)

	// Environment overrides keep the historical variable names.
	for key, env := range map[string]string{
		"budgets.max_function_lines": EnvMaxFunctionLines,
		"budgets.max_file_lines":     EnvMaxFileLines,
		"budgets.complexity_warn":    EnvComplexityWarn,
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if cfgFile == "" {
		if _, err := os.Stat(LocalConfigFile); err == nil {
			cfgFile = LocalConfigFile
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName(strings.TrimSuffix(DefaultConfigFile, filepath.Ext(DefaultConfigFile)))
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every budget is a positive integer.
func (c *Config) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{EnvMaxFunctionLines, c.Budgets.MaxFunctionLines},
		{EnvMaxFileLines, c.Budgets.MaxFileLines},
		{EnvComplexityWarn, c.Budgets.ComplexityWarn},
	}
	for _, ch := range checks {
		if ch.value <= 0 {
			return fmt.Errorf("budget %s must be positive, got %d", ch.name, ch.value)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// DBPath returns the full path to the SQLite history database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
