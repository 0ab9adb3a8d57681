package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/datadash/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	Addr                   string `mapstructure:"addr" yaml:"addr"`
	DefaultDataPath        string `mapstructure:"default_data_path" yaml:"default_data_path"`
	MaxUploadMB            int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	CacheEntries           int    `mapstructure:"cache_entries" yaml:"cache_entries"`
	PreviewRows            int    `mapstructure:"preview_rows" yaml:"preview_rows"`
	DefaultSelectedColumns int    `mapstructure:"default_selected_columns" yaml:"default_selected_columns"`
	HistogramBins          int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`

	// CSV parsing
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	// Server
	SessionSecret      string `mapstructure:"session_secret" yaml:"session_secret"`
	WatchDefault       bool   `mapstructure:"watch_default" yaml:"watch_default"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() Global {
	return Global{
		Addr:                   ":8501",
		DefaultDataPath:        "diabetes.csv",
		MaxUploadMB:            200,
		CacheEntries:           16,
		PreviewRows:            5,
		DefaultSelectedColumns: 5,
		HistogramBins:          20,
		Delimiter:              ",",
		WatchDefault:           true,
		ShutdownTimeoutSec:     5,
		LogLevel:               "info",
	}
}

// DefaultPath returns ~/.datadash/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".datadash", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.datadash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DATADASH")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("addr", d.Addr)
	v.SetDefault("default_data_path", d.DefaultDataPath)
	v.SetDefault("max_upload_mb", d.MaxUploadMB)
	v.SetDefault("cache_entries", d.CacheEntries)
	v.SetDefault("preview_rows", d.PreviewRows)
	v.SetDefault("default_selected_columns", d.DefaultSelectedColumns)
	v.SetDefault("histogram_bins", d.HistogramBins)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("decimal_separator", d.DecimalSeparator)
	v.SetDefault("thousands_separator", d.ThousandsSeparator)
	v.SetDefault("session_secret", d.SessionSecret)
	v.SetDefault("watch_default", d.WatchDefault)
	v.SetDefault("shutdown_timeout_sec", d.ShutdownTimeoutSec)
	v.SetDefault("log_level", d.LogLevel)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".datadash"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the server cannot run with.
func (c *Global) Validate() error {
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max_upload_mb: %d", c.MaxUploadMB)
	}
	if c.CacheEntries <= 0 {
		return fmt.Errorf("invalid cache_entries: %d", c.CacheEntries)
	}
	if c.HistogramBins <= 0 {
		return fmt.Errorf("invalid histogram_bins: %d", c.HistogramBins)
	}
	if _, err := ParseRune(c.Delimiter); err != nil {
		return fmt.Errorf("invalid delimiter: %w", err)
	}
	return nil
}

// ParseRune converts a separator setting into a rune. The empty string maps
// to 0 (auto-detect); "tab", "comma", "dot" and "space" are accepted aliases.
func ParseRune(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", "\\t", "\t":
		return '\t', nil
	case "comma":
		return ',', nil
	case "dot":
		return '.', nil
	case "space":
		return ' ', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("expected a single character, got %q", s)
	}
	return r[0], nil
}
