// Package config defines the simulator configuration and how it is loaded.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SessionDBPath is the SQLite file holding the signed-in employee.
	// Empty keeps the session in memory.
	SessionDBPath string `koanf:"session_db_path"`

	// JWTSecret signs bearer tokens issued at login.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTLMinutes is the lifetime of issued tokens.
	TokenTTLMinutes int `koanf:"token_ttl_minutes"`

	// FeedbackLatencyMinMS and FeedbackLatencyMaxMS simulate the latency of
	// the feedback service.
	FeedbackLatencyMinMS int `koanf:"feedback_latency_min_ms"`
	FeedbackLatencyMaxMS int `koanf:"feedback_latency_max_ms"`

	// FeedbackTimeoutMS bounds one submission end to end.
	FeedbackTimeoutMS int `koanf:"feedback_timeout_ms"`

	// ScoreFloor and ScoreCeiling clamp every sub-score.
	ScoreFloor   int `koanf:"score_floor"`
	ScoreCeiling int `koanf:"score_ceiling"`

	// MaxResponseChars caps the length of a submitted response.
	MaxResponseChars int `koanf:"max_response_chars"`

	// SeedDemoProgress primes the store with the demo progress records.
	SeedDemoProgress bool `koanf:"seed_demo_progress"`
}

// New returns a Config populated with defaults. Context is accepted first to
// follow the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		SessionDBPath:        "data/session.db",
		JWTSecret:            "shopfloor-dev-secret",
		TokenTTLMinutes:      480,
		FeedbackLatencyMinMS: 500,
		FeedbackLatencyMaxMS: 1000,
		FeedbackTimeoutMS:    5000,
		ScoreFloor:           10,
		ScoreCeiling:         95,
		MaxResponseChars:     2000,
		SeedDemoProgress:     true,
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.JWTSecret == "":
		return fmt.Errorf("%w: jwt_secret must not be empty", ErrInvalidConfig)
	case c.TokenTTLMinutes <= 0:
		return fmt.Errorf("%w: token_ttl_minutes must be positive", ErrInvalidConfig)
	case c.FeedbackLatencyMinMS < 0 || c.FeedbackLatencyMaxMS < c.FeedbackLatencyMinMS:
		return fmt.Errorf("%w: feedback latency range [%d,%d] is invalid", ErrInvalidConfig, c.FeedbackLatencyMinMS, c.FeedbackLatencyMaxMS)
	case c.FeedbackTimeoutMS <= c.FeedbackLatencyMaxMS:
		return fmt.Errorf("%w: feedback_timeout_ms must exceed feedback_latency_max_ms", ErrInvalidConfig)
	case c.ScoreFloor < 0 || c.ScoreCeiling > 100 || c.ScoreFloor >= c.ScoreCeiling:
		return fmt.Errorf("%w: score bounds [%d,%d] are invalid", ErrInvalidConfig, c.ScoreFloor, c.ScoreCeiling)
	case c.MaxResponseChars <= 0:
		return fmt.Errorf("%w: max_response_chars must be positive", ErrInvalidConfig)
	}
	return nil
}

// TokenTTL returns TokenTTLMinutes as a duration.
func (c *Config) TokenTTL() time.Duration { return time.Duration(c.TokenTTLMinutes) * time.Minute }

// FeedbackLatency returns the simulated latency bounds.
func (c *Config) FeedbackLatency() (time.Duration, time.Duration) {
	return time.Duration(c.FeedbackLatencyMinMS) * time.Millisecond,
		time.Duration(c.FeedbackLatencyMaxMS) * time.Millisecond
}

// FeedbackTimeout returns FeedbackTimeoutMS as a duration.
func (c *Config) FeedbackTimeout() time.Duration {
	return time.Duration(c.FeedbackTimeoutMS) * time.Millisecond
}
