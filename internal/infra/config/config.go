package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Download DownloadConfig `mapstructure:"download" yaml:"download"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`

	Port string `mapstructure:"port" yaml:"port"`
}

type DownloadConfig struct {
	OutDir             string `mapstructure:"out_dir" yaml:"out_dir"`
	Workers            int    `mapstructure:"workers" yaml:"workers"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MinSplitSize       int64  `mapstructure:"min_split_size" yaml:"min_split_size"`
	RetryAttempts      int    `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	RetryDelayMS       int    `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`
	RetryMaxDelayMS    int    `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`
	ProgressIntervalMS int    `mapstructure:"progress_interval_ms" yaml:"progress_interval_ms"`
}

type LogConfig struct {
	Path          string `mapstructure:"path" yaml:"path"`
	Level         string `mapstructure:"level" yaml:"level"`
	IncludeStdout bool   `mapstructure:"include_stdout" yaml:"include_stdout"`
}

type StoreConfig struct {
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

func (c *DownloadConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *DownloadConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

func (c *DownloadConfig) RetryMaxDelay() time.Duration {
	return time.Duration(c.RetryMaxDelayMS) * time.Millisecond
}

func (c *DownloadConfig) ProgressInterval() time.Duration {
	return time.Duration(c.ProgressIntervalMS) * time.Millisecond
}

// Load reads the config file at path and applies GOPULL_* environment
// overrides. An empty path means "config.yaml if present, otherwise pure
// defaults" so the CLI works without any file on disk.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = "config.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		// No file at the default location: run on defaults + env only.
		path = ""
	}

	v := viper.New()

	// Set Defaults
	v.SetDefault("port", "8080")
	v.SetDefault("download.out_dir", ".")
	v.SetDefault("download.workers", 5)
	v.SetDefault("download.timeout_seconds", 5)
	v.SetDefault("download.min_split_size", 2<<20)
	v.SetDefault("download.retry_attempts", 0) // 0 = retry forever
	v.SetDefault("download.retry_delay_ms", 0)
	v.SetDefault("download.retry_max_delay_ms", 30000)
	v.SetDefault("download.progress_interval_ms", 1000)
	v.SetDefault("log.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.include_stdout", true)
	v.SetDefault("store.sqlite_path", "gopull.db")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// Support Environment Variables
	v.SetEnvPrefix("GOPULL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Download.Workers <= 0 {
		c.Download.Workers = 5
	}

	if c.Download.TimeoutSeconds <= 0 {
		c.Download.TimeoutSeconds = 5
	}

	if c.Download.MinSplitSize < 0 {
		return fmt.Errorf("download.min_split_size must not be negative")
	}

	if c.Download.RetryAttempts < 0 {
		return fmt.Errorf("download.retry_attempts must not be negative")
	}

	if c.Download.ProgressIntervalMS <= 0 {
		c.Download.ProgressIntervalMS = 1000
	}

	if c.Download.OutDir == "" {
		c.Download.OutDir = "."
	}

	return nil
}
