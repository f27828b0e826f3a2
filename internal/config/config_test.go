package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("portal.base_url", "https://e-jagriti.gov.in/")
	v.SetDefault("portal.search_url", "https://e-jagriti.gov.in/advance-case-search")
	v.SetDefault("http.user_agent", "test-agent")
	v.SetDefault("http.request_timeout", "30s")
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.base_retry_delay", "1s")
	v.SetDefault("http.max_conns", 10)
	v.SetDefault("http.max_conns_per_host", 5)
	v.SetDefault("challenge.markers", []string{"captcha"})
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.request_timeout", "60s")
	return v
}

func TestLoad(t *testing.T) {
	cfg, err := Load(newTestViper())
	require.NoError(t, err)
	require.Equal(t, "https://e-jagriti.gov.in", cfg.Portal.BaseURL, "trailing slash trimmed")
	require.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
	require.Equal(t, 3, cfg.HTTP.MaxRetries)
	require.Equal(t, []string{"captcha"}, cfg.Challenge.Markers)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		set  func(*viper.Viper)
	}{
		{name: "missing base url", set: func(v *viper.Viper) { v.Set("portal.base_url", "") }},
		{name: "missing search url", set: func(v *viper.Viper) { v.Set("portal.search_url", "") }},
		{name: "missing user agent", set: func(v *viper.Viper) { v.Set("http.user_agent", "") }},
		{name: "zero retries", set: func(v *viper.Viper) { v.Set("http.max_retries", 0) }},
		{name: "zero timeout", set: func(v *viper.Viper) { v.Set("http.request_timeout", "0s") }},
		{name: "no challenge markers", set: func(v *viper.Viper) { v.Set("challenge.markers", []string{}) }},
		{name: "bad port", set: func(v *viper.Viper) { v.Set("server.port", 99999) }},
		{name: "auth without key", set: func(v *viper.Viper) { v.Set("auth.enabled", true) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestViper()
			tt.set(v)
			_, err := Load(v)
			require.Error(t, err)
		})
	}
}
