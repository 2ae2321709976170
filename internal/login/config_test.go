package login

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "session_id", cfg.Cookie.Name)
	require.Equal(t, 4*time.Hour, cfg.SessionTTL)
	require.Equal(t, 30*time.Minute, cfg.CookieTTL)
	require.False(t, cfg.Cookie.Secure)

	warnings := cfg.Warnings()
	require.Len(t, warnings, 3)
	require.Contains(t, warnings[0], "differs from cookie TTL")
}

func TestConfig_Warnings_hardened(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CookieTTL = cfg.SessionTTL
	cfg.Cookie.Secure = true
	cfg.Cookie.SameSite = http.SameSiteLaxMode

	require.Empty(t, cfg.Warnings())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "zero session ttl", modify: func(c *Config) { c.SessionTTL = 0 }},
		{name: "negative cookie ttl", modify: func(c *Config) { c.CookieTTL = -time.Minute }},
		{name: "empty cookie name", modify: func(c *Config) { c.Cookie.Name = "" }},
		{name: "samesite none without secure", modify: func(c *Config) { c.Cookie.SameSite = http.SameSiteNoneMode }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestParseSameSite(t *testing.T) {
	tests := []struct {
		input    string
		expected http.SameSite
		wantErr  bool
	}{
		{input: "", expected: 0},
		{input: "lax", expected: http.SameSiteLaxMode},
		{input: "Strict", expected: http.SameSiteStrictMode},
		{input: "none", expected: http.SameSiteNoneMode},
		{input: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSameSite(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}
