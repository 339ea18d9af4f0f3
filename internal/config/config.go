// Package config defines service configuration and its loading hooks.
//
// Conventions:
//   - New returns a Config populated with defaults.
//   - Load layers defaults, an optional YAML file and CHURN_ env vars.
//   - Errors returned by Load wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/churn/internal/domain/decision"
)

// Threshold bounds accepted by the decision slider.
const (
	MinThreshold = decision.MinThreshold
	MaxThreshold = decision.MaxThreshold
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// ModelPath points at the serialized scoring pipeline.
	ModelPath string `koanf:"model_path"`

	// DefaultThreshold is used when a submission omits the threshold.
	DefaultThreshold float64 `koanf:"default_threshold"`

	// RateLimitRPS and RateLimitBurst bound POST /predict. RPS <= 0 disables the limiter.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// MaxBodyBytes caps the size of a prediction request body.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		ModelPath:        "model.yaml",
		DefaultThreshold: 0.50,
		RateLimitRPS:     50,
		RateLimitBurst:   100,
		MaxBodyBytes:     64 << 10,
	}
}

// Validate reports the first invalid setting, wrapped with ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ModelPath) == "":
		return fmt.Errorf("%w: model_path must not be empty", ErrInvalidConfig)
	case decision.ValidateThreshold(c.DefaultThreshold) != nil:
		return fmt.Errorf("%w: default_threshold %.2f outside [%.2f, %.2f]",
			ErrInvalidConfig, c.DefaultThreshold, MinThreshold, MaxThreshold)
	case c.RateLimitRPS > 0 && c.RateLimitBurst < 1:
		return fmt.Errorf("%w: rate_limit_burst must be positive when rate limiting is enabled", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q must be text or json", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
