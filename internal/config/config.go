// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR"`
	RegistryURL     string        `mapstructure:"REGISTRY_URL"`
	DownloadsURL    string        `mapstructure:"DOWNLOADS_URL"`
	GithubAPIURL    string        `mapstructure:"GITHUB_API_URL"`
	GithubToken     string        `mapstructure:"GITHUB_TOKEN"`
	NpmPackageURL   string        `mapstructure:"NPM_PACKAGE_URL"`
	RedisURL        string        `mapstructure:"REDIS_URL"`
	MemoryCacheSize int           `mapstructure:"MEMORY_CACHE_SIZE"`
	HTTPTimeout     time.Duration `mapstructure:"HTTP_TIMEOUT"`
	RevalidateAfter time.Duration `mapstructure:"REVALIDATE_AFTER"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("REGISTRY_URL", "https://registry.npmjs.org")
	v.SetDefault("DOWNLOADS_URL", "https://api.npmjs.org")
	v.SetDefault("GITHUB_API_URL", "https://api.github.com/")
	v.SetDefault("GITHUB_TOKEN", "")
	v.SetDefault("NPM_PACKAGE_URL", "https://www.npmjs.com/package/")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("MEMORY_CACHE_SIZE", 1000)
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("REVALIDATE_AFTER", "1h")
	v.SetDefault("REQUEST_TIMEOUT", "60s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
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
	for key, raw := range map[string]string{
		"REGISTRY_URL":    c.RegistryURL,
		"DOWNLOADS_URL":   c.DownloadsURL,
		"GITHUB_API_URL":  c.GithubAPIURL,
		"NPM_PACKAGE_URL": c.NpmPackageURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", key, raw)
		}
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.MemoryCacheSize <= 0 {
		return errors.New("MEMORY_CACHE_SIZE must be positive")
	}
	if c.RevalidateAfter < 0 {
		return errors.New("REVALIDATE_AFTER must not be negative")
	}
	return nil
}
