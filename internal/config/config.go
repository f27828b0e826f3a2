// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Portal    PortalConfig
	HTTP      HTTPConfig
	Challenge ChallengeConfig
	Selectors SelectorConfig
	Server    ServerConfig
	Auth      AuthConfig
	Logging   LoggingConfig
}

// PortalConfig points at the upstream case-search portal.
type PortalConfig struct {
	BaseURL    string
	SearchURL  string
	CourtType  string
	OrderType  string
	DateFilter string
}

// HTTPConfig configures the portal client's retry and pooling behavior.
type HTTPConfig struct {
	UserAgent       string
	RequestTimeout  time.Duration
	MaxRetries      int
	BaseRetryDelay  time.Duration
	MaxConns        int
	MaxConnsPerHost int
}

// ChallengeConfig holds the anti-automation marker list.
type ChallengeConfig struct {
	Markers []string
}

// SelectorConfig lists the candidate selectors tried against the portal's
// unstable markup, in priority order.
type SelectorConfig struct {
	State        []string
	Commission   []string
	ResultsTable []string
}

// ServerConfig controls the API server.
type ServerConfig struct {
	Port           int
	RequestTimeout time.Duration
	PreloadStates  bool
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool
	APIKey  string
}

// LoggingConfig selects the logger profile.
type LoggingConfig struct {
	Development bool
}

// Load constructs a Config by reading from Viper.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Portal: PortalConfig{
			BaseURL:    strings.TrimRight(v.GetString("portal.base_url"), "/"),
			SearchURL:  v.GetString("portal.search_url"),
			CourtType:  v.GetString("portal.court_type"),
			OrderType:  v.GetString("portal.order_type"),
			DateFilter: v.GetString("portal.date_filter"),
		},
		HTTP: HTTPConfig{
			UserAgent:       v.GetString("http.user_agent"),
			RequestTimeout:  v.GetDuration("http.request_timeout"),
			MaxRetries:      v.GetInt("http.max_retries"),
			BaseRetryDelay:  v.GetDuration("http.base_retry_delay"),
			MaxConns:        v.GetInt("http.max_conns"),
			MaxConnsPerHost: v.GetInt("http.max_conns_per_host"),
		},
		Challenge: ChallengeConfig{
			Markers: v.GetStringSlice("challenge.markers"),
		},
		Selectors: SelectorConfig{
			State:        v.GetStringSlice("selectors.state"),
			Commission:   v.GetStringSlice("selectors.commission"),
			ResultsTable: v.GetStringSlice("selectors.results_table"),
		},
		Server: ServerConfig{
			Port:           v.GetInt("server.port"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			PreloadStates:  v.GetBool("server.preload_states"),
		},
		Auth: AuthConfig{
			Enabled: v.GetBool("auth.enabled"),
			APIKey:  v.GetString("auth.api_key"),
		},
		Logging: LoggingConfig{
			Development: v.GetBool("logging.development"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.Portal.BaseURL == "" {
		return fmt.Errorf("portal.base_url must be set")
	}
	if c.Portal.SearchURL == "" {
		return fmt.Errorf("portal.search_url must be set")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent must be set")
	}
	if c.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("http.request_timeout must be > 0")
	}
	if c.HTTP.MaxRetries <= 0 {
		return fmt.Errorf("http.max_retries must be > 0")
	}
	if c.HTTP.BaseRetryDelay <= 0 {
		return fmt.Errorf("http.base_retry_delay must be > 0")
	}
	if c.HTTP.MaxConns <= 0 {
		return fmt.Errorf("http.max_conns must be > 0")
	}
	if c.HTTP.MaxConnsPerHost <= 0 {
		return fmt.Errorf("http.max_conns_per_host must be > 0")
	}
	if len(c.Challenge.Markers) == 0 {
		return fmt.Errorf("challenge.markers must include at least one marker")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid port")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.enabled requires auth.api_key")
	}
	return nil
}
