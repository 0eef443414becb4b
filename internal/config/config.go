// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New() builds a Config holding every default.
//   - Load layers an optional YAML file and FOLIO_* environment variables on top.
//   - Durations are configured in milliseconds and exposed through helpers.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// GitHubUsername is the account whose activity the site shows.
	GitHubUsername string `koanf:"github_username"`

	// GitHubToken is optional; it raises the REST rate limit.
	GitHubToken string `koanf:"github_token"`

	// GitHubAPIURL overrides the REST base URL (tests, GHE).
	GitHubAPIURL string `koanf:"github_api_url"`

	// ContributionsAPIURL is the base of the contribution calendar API.
	ContributionsAPIURL string `koanf:"contributions_api_url"`

	// RelayURL is the form relay submit endpoint.
	RelayURL string `koanf:"relay_url"`

	// RelayAccessKey is the relay's public access key.
	RelayAccessKey string `koanf:"relay_access_key"`

	// RelayFromName is the sender name attached to relayed mail.
	RelayFromName string `koanf:"relay_from_name"`

	// FetchTimeoutMS bounds every outbound HTTP call.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// SuccessResetMS is the delay before a successful form returns to idle.
	// Zero keeps the success state until the visitor dismisses it.
	SuccessResetMS int `koanf:"success_reset_ms"`

	// StatsTTLMS is how long a dashboard load is served from cache.
	StatsTTLMS int `koanf:"stats_ttl_ms"`

	// StatsRefreshMS is the background warm-up interval; zero disables it.
	StatsRefreshMS int `koanf:"stats_refresh_ms"`

	// QueueSize bounds pending contact deliveries.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of delivery workers.
	WorkerCount int `koanf:"worker_count"`

	// MaxSessions bounds open contact form sessions.
	MaxSessions int `koanf:"max_sessions"`

	// SessionIdleMS expires untouched form sessions.
	SessionIdleMS int `koanf:"session_idle_ms"`

	// ContentFile optionally replaces the embedded portfolio content.
	ContentFile string `koanf:"content_file"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		GitHubUsername:      "AnshitSharma",
		ContributionsAPIURL: "https://github-contributions-api.jogruber.de",
		RelayURL:            "https://api.web3forms.com/submit",
		RelayFromName:       "Portfolio Contact Form",
		FetchTimeoutMS:      8_000,
		SuccessResetMS:      6_000,
		StatsTTLMS:          10 * 60 * 1000,
		StatsRefreshMS:      5 * 60 * 1000,
		QueueSize:           256,
		WorkerCount:         runtime.NumCPU(),
		MaxSessions:         10_000,
		SessionIdleMS:       30 * 60 * 1000,
	}
}

// Validate checks invariants that would otherwise surface as runtime errors.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.GitHubUsername) == "":
		return fmt.Errorf("%w: github_username must not be empty", ErrInvalidConfig)
	case c.FetchTimeoutMS <= 0:
		return fmt.Errorf("%w: fetch_timeout_ms must be positive", ErrInvalidConfig)
	case c.SuccessResetMS < 0:
		return fmt.Errorf("%w: success_reset_ms must not be negative", ErrInvalidConfig)
	case c.StatsTTLMS <= 0:
		return fmt.Errorf("%w: stats_ttl_ms must be positive", ErrInvalidConfig)
	case c.StatsRefreshMS < 0:
		return fmt.Errorf("%w: stats_refresh_ms must not be negative", ErrInvalidConfig)
	case c.SessionIdleMS <= 0:
		return fmt.Errorf("%w: session_idle_ms must be positive", ErrInvalidConfig)
	}
	return nil
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration { return ms(c.FetchTimeoutMS) }

// SuccessReset returns SuccessResetMS as a duration.
func (c *Config) SuccessReset() time.Duration { return ms(c.SuccessResetMS) }

// StatsTTL returns StatsTTLMS as a duration.
func (c *Config) StatsTTL() time.Duration { return ms(c.StatsTTLMS) }

// StatsRefresh returns StatsRefreshMS as a duration.
func (c *Config) StatsRefresh() time.Duration { return ms(c.StatsRefreshMS) }

// SessionIdle returns SessionIdleMS as a duration.
func (c *Config) SessionIdle() time.Duration { return ms(c.SessionIdleMS) }

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }
