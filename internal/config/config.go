package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the meal client
// Values come from an optional mealctl.yml file, overridden by environment variables
type Config struct {
	API      APIConfig
	Finder   FinderConfig
	Form     FormConfig
	LogLevel string
}

type APIConfig struct {
	BaseURL string
	Timeout int // seconds
}

type FinderConfig struct {
	PageSize int
}

type FormConfig struct {
	RedirectDelayMs int
	ListingPath     string
	RatingPolicy    string
}

// RequestTimeout returns the API timeout as a duration
func (c APIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// RedirectDelay returns the post-save navigation delay as a duration
func (c FormConfig) RedirectDelay() time.Duration {
	return time.Duration(c.RedirectDelayMs) * time.Millisecond
}

// Load reads configuration from the given file (or mealctl.yml in the working
// directory when path is empty) and the environment
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mealctl")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
	}

	// api.base_url can be overridden by API_BASE_URL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL: v.GetString("api.base_url"),
			Timeout: v.GetInt("api.timeout"),
		},
		Finder: FinderConfig{
			PageSize: v.GetInt("finder.page_size"),
		},
		Form: FormConfig{
			RedirectDelayMs: v.GetInt("form.redirect_delay_ms"),
			ListingPath:     v.GetString("form.listing_path"),
			RatingPolicy:    v.GetString("form.rating_policy"),
		},
		LogLevel: v.GetString("log_level"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 30)
	v.SetDefault("finder.page_size", 102)
	v.SetDefault("form.redirect_delay_ms", 1500)
	v.SetDefault("form.listing_path", "/find")
	v.SetDefault("form.rating_policy", "sentinel")
	v.SetDefault("log_level", "info")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL: %q", c.API.BaseURL)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}

	if c.Finder.PageSize <= 0 {
		return fmt.Errorf("FINDER_PAGE_SIZE must be positive")
	}

	if c.Form.RedirectDelayMs < 0 {
		return fmt.Errorf("FORM_REDIRECT_DELAY_MS must not be negative")
	}

	if !strings.HasPrefix(c.Form.ListingPath, "/") {
		return fmt.Errorf("FORM_LISTING_PATH must start with /: %q", c.Form.ListingPath)
	}

	validPolicies := map[string]bool{"sentinel": true, "passthrough": true}
	if !validPolicies[strings.ToLower(c.Form.RatingPolicy)] {
		return fmt.Errorf("invalid rating policy: %s (must be sentinel or passthrough)", c.Form.RatingPolicy)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}
