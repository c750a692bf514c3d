package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvTimeout, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvHome, "")

	cfg := Load()
	require.Equal(t, DefaultAPIURL, cfg.APIURL)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, ".moneta", filepath.Base(cfg.Home))
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvAPIURL, "https://money.example.com/api/")
	t.Setenv(EnvTimeout, "5s")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvHome, home)

	cfg := Load()
	require.Equal(t, "https://money.example.com/api", cfg.APIURL)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, zerolog.DebugLevel, cfg.Level())
	require.Equal(t, filepath.Join(home, "moneta.log"), cfg.LogFile())
	require.Equal(t, "https://money.example.com/api/docs", cfg.DocsURL())
}

func TestLoadIgnoresBadDuration(t *testing.T) {
	t.Setenv(EnvTimeout, "soon")
	require.Equal(t, 30*time.Second, Load().Timeout)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MONETA_API_URL=http://from-dotenv:8000\n"), 0o600))
	t.Chdir(dir)

	t.Setenv(EnvAPIURL, "")
	require.NoError(t, os.Unsetenv(EnvAPIURL))
	LoadDotEnv()
	require.Equal(t, "http://from-dotenv:8000", Load().APIURL)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{APIURL: "http://localhost:8000", Timeout: 10 * time.Second, Home: "/tmp/m", LogLevel: "info"}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		errorString string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad scheme", func(c *Config) { c.APIURL = "ftp://x" }, "invalid API URL scheme 'ftp'"},
		{"missing host", func(c *Config) { c.APIURL = "http://" }, "missing host"},
		{"timeout too short", func(c *Config) { c.Timeout = 10 * time.Millisecond }, "must be at least 1 second"},
		{"timeout too long", func(c *Config) { c.Timeout = time.Hour }, "must be at most 5 minutes"},
		{"empty home", func(c *Config) { c.Home = "" }, "home directory cannot be empty"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "invalid log level 'loud'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.errorString)
		})
	}
}
