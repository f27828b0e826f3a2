// Package config is responsible for initializing the application's
// configuration. It uses the Viper library to read settings from a config
// file, environment variables, and command-line flags, providing a unified
// configuration system.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jagriti-dev/casesearch/internal/logging"
)

// InitConfig initializes the application's configuration using Viper.
// It sets up default values, defines configuration search paths, and enables
// reading from environment variables. This function is designed to be called
// once at application startup.
func InitConfig() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/casesearch/")
	viper.AddConfigPath("$HOME/.casesearch")

	// Portal endpoints. The search entry page exposes the state selector,
	// the commission selector, and the advanced-search form.
	viper.SetDefault("portal.base_url", "https://e-jagriti.gov.in")
	viper.SetDefault("portal.search_url", "https://e-jagriti.gov.in/advance-case-search")
	viper.SetDefault("portal.court_type", "DCDRC")
	viper.SetDefault("portal.order_type", "daily_order")
	viper.SetDefault("portal.date_filter", "filing_date")

	// Outbound HTTP behavior.
	const defaultUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	viper.SetDefault("http.user_agent", defaultUA)
	viper.SetDefault("http.request_timeout", "30s")
	viper.SetDefault("http.max_retries", 3)
	viper.SetDefault("http.base_retry_delay", "1s")
	viper.SetDefault("http.max_conns", 10)
	viper.SetDefault("http.max_conns_per_host", 5)

	// Challenge detection markers. Heuristic, deliberately short: ordinary
	// result pages must never match.
	viper.SetDefault("challenge.markers", []string{
		"captcha",
		"g-recaptcha",
		"cf-challenge",
		"please verify you are a human",
	})

	// Selector candidates for the jurisdiction dropdowns, tried in order.
	viper.SetDefault("selectors.state", []string{
		`select[name="state"]`,
		`select#state`,
	})
	viper.SetDefault("selectors.commission", []string{
		`select[name="commission"]`,
		`select#commission`,
		`select[name="dcdrc"]`,
	})
	viper.SetDefault("selectors.results_table", []string{
		"table.results",
		"table#case-results",
	})

	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.request_timeout", "60s")
	viper.SetDefault("server.preload_states", true)
	viper.SetDefault("auth.enabled", false)
	viper.SetDefault("auth.api_key", "")
	viper.SetDefault("logging.development", false)

	viper.SetEnvPrefix("CASESEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logging.L.Warn("Config file not found; using defaults and environment variables.")
		} else {
			logging.L.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
