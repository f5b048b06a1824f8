// Package config loads daylog settings from defaults, an optional config file
// and DAYLOG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	KeyFileLogging    = "file_logging"
	KeyConsoleLogging = "console_logging"
	KeyLogFolder      = "log_folder"
	KeyUTCOffset      = "utc_offset"
	KeyStartMessage   = "start_message"
	KeyColor          = "color"
	KeyDailyRotation  = "daily_rotation"
	KeyResponseTime   = "response_time"
	KeyWatch          = "watch"
	KeyAddr           = "addr"
	KeyMetricsAddr    = "metrics_addr"

	EnvPrefix    = "DAYLOG"
	EnvConfig    = "DAYLOG_CONFIG"
	EnvLogFolder = "DAYLOG_LOG_FOLDER"
	EnvUTCOffset = "DAYLOG_UTC_OFFSET"
	EnvColor     = "DAYLOG_COLOR"
	EnvFile      = "DAYLOG_FILE_LOGGING"

	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"

	ResponseTimeLegacy    = "legacy"
	ResponseTimeMonotonic = "monotonic"

	DefaultLogFolder   = "./logs"
	DefaultUTCOffset   = "-03:00"
	DefaultAddr        = ":8080"
	DefaultMetricsAddr = ":2112"
	DefaultConfigName  = "daylog"
	ConfigDir          = "."
)

var (
	ErrInvalidColor        = errors.New("invalid color mode")
	ErrInvalidResponseTime = errors.New("invalid response time mode")
)

type Config struct {
	FileLogging    bool   `mapstructure:"file_logging"`
	ConsoleLogging bool   `mapstructure:"console_logging"`
	LogFolder      string `mapstructure:"log_folder"`
	UTCOffset      string `mapstructure:"utc_offset"`
	StartMessage   bool   `mapstructure:"start_message"`
	Color          string `mapstructure:"color"`
	DailyRotation  bool   `mapstructure:"daily_rotation"`
	ResponseTime   string `mapstructure:"response_time"`
	Watch          bool   `mapstructure:"watch"`
	Addr           string `mapstructure:"addr"`
	MetricsAddr    string `mapstructure:"metrics_addr"`
}

// Load reads configuration. path names a config file; when empty,
// DAYLOG_CONFIG is consulted, then daylog.{yaml,json,toml} in the working
// directory. A missing file is not an error.
func Load(path string) (Config, error) {
	var cfg Config
	v := viper.New()

	v.SetDefault(KeyFileLogging, true)
	v.SetDefault(KeyConsoleLogging, true)
	v.SetDefault(KeyLogFolder, DefaultLogFolder)
	v.SetDefault(KeyUTCOffset, DefaultUTCOffset)
	v.SetDefault(KeyStartMessage, true)
	v.SetDefault(KeyColor, ColorAlways)
	v.SetDefault(KeyDailyRotation, false)
	v.SetDefault(KeyResponseTime, ResponseTimeLegacy)
	v.SetDefault(KeyWatch, false)
	v.SetDefault(KeyAddr, DefaultAddr)
	v.SetDefault(KeyMetricsAddr, DefaultMetricsAddr)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path == "" {
		if envPath, ok := os.LookupEnv(EnvConfig); ok {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(ConfigDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !(errors.As(err, &nf) || errors.Is(err, os.ErrNotExist)) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	c.Color = strings.ToLower(c.Color)
	switch c.Color {
	case ColorAlways, ColorAuto, ColorNever:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidColor, c.Color)
	}
	c.ResponseTime = strings.ToLower(c.ResponseTime)
	switch c.ResponseTime {
	case ResponseTimeLegacy, ResponseTimeMonotonic:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidResponseTime, c.ResponseTime)
	}
	return nil
}
