package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/ytget/ytgrab/internal/platform"
)

// Default values
const (
	DefaultServiceURL            = "http://localhost:5000"
	DefaultRequestTimeoutSeconds = 600
	DefaultResolveTimeoutSeconds = 30
	DefaultMaxParallel           = 2
	DefaultLogLevel              = "info"
	DefaultAutoReveal            = true

	// MaxParallelLimit caps concurrent sessions in a batch
	MaxParallelLimit = 10
)

// Config is the file-based configuration shared by the desktop app and the CLI
type Config struct {
	ServiceURL            string `toml:"service_url"`
	DownloadDir           string `toml:"download_dir"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	ResolveTimeoutSeconds int    `toml:"resolve_timeout_seconds"`
	MaxParallel           int    `toml:"max_parallel"`
	LogLevel              string `toml:"log_level"`
	AutoReveal            bool   `toml:"auto_reveal"`
}

// Default returns the built-in configuration used when no file overrides it
func Default() Config {
	return Config{
		ServiceURL:            DefaultServiceURL,
		DownloadDir:           defaultDownloadDir(),
		RequestTimeoutSeconds: DefaultRequestTimeoutSeconds,
		ResolveTimeoutSeconds: DefaultResolveTimeoutSeconds,
		MaxParallel:           DefaultMaxParallel,
		LogLevel:              DefaultLogLevel,
		AutoReveal:            DefaultAutoReveal,
	}
}

// DefaultPath returns ~/.ytgrab/config.toml, or a relative path without a home
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()

	if homeDir == "" {
		return filepath.Join(".ytgrab", "config.toml")
	}

	return filepath.Join(homeDir, ".ytgrab", "config.toml")
}

// LoadOrCreate reads path, writing the defaults there first if it does not exist
func LoadOrCreate(path string) (Config, error) {
	config := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return config, err
			}

			configData, err := toml.Marshal(config)
			if err != nil {
				return config, err
			}

			if err := os.WriteFile(path, configData, 0o644); err != nil {
				return config, err
			}

			return config, nil
		}

		return config, err
	}

	configData, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := toml.Unmarshal(configData, &config); err != nil {
		return config, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := config.normalize(); err != nil {
		return config, err
	}

	return config, nil
}

// normalize trims fields, expands paths and fills zero values with defaults
func (c *Config) normalize() error {
	c.ServiceURL = strings.TrimRight(strings.TrimSpace(c.ServiceURL), "/")
	c.DownloadDir = expandPath(strings.TrimSpace(c.DownloadDir))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if c.ServiceURL == "" {
		return errors.New("service_url is required")
	}

	if c.DownloadDir == "" {
		c.DownloadDir = defaultDownloadDir()
	}

	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}

	if c.ResolveTimeoutSeconds <= 0 {
		c.ResolveTimeoutSeconds = DefaultResolveTimeoutSeconds
	}

	if c.MaxParallel <= 0 {
		c.MaxParallel = DefaultMaxParallel
	}
	if c.MaxParallel > MaxParallelLimit {
		c.MaxParallel = MaxParallelLimit
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	return nil
}

// RequestTimeout bounds a download request
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ResolveTimeout bounds a metadata request
func (c Config) ResolveTimeout() time.Duration {
	return time.Duration(c.ResolveTimeoutSeconds) * time.Second
}

// Level returns the slog level named by LogLevel, defaulting to info
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewLogger builds the text logger used by the entry points
func (c Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.Level()}))
}

func defaultDownloadDir() string {
	dir, err := platform.GetHomeDownloadsDir()
	if err != nil {
		return "downloads"
	}
	return dir
}

func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		homeDir, _ := os.UserHomeDir()
		if homeDir != "" {
			return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
		}
	}

	return path
}
