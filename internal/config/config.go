// Package config loads moneta's settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Environment variables read by Load.
const (
	EnvAPIURL   = "MONETA_API_URL"
	EnvHome     = "MONETA_HOME"
	EnvLogLevel = "MONETA_LOG_LEVEL"
	EnvTimeout  = "MONETA_TIMEOUT"
	// EnvToken overrides the stored access token, for scripts.
	EnvToken = "MONETA_TOKEN"
)

// DefaultAPIURL is the backend's local development address.
const DefaultAPIURL = "http://localhost:8000"

type Config struct {
	// Backend
	APIURL  string
	Timeout time.Duration

	// Local state
	Home string

	// Logging
	LogLevel string
}

// LoadDotEnv reads .env from the working directory if there is one.
// Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		APIURL:   strings.TrimRight(getEnv(EnvAPIURL, DefaultAPIURL), "/"),
		Timeout:  getEnvDuration(EnvTimeout, 30*time.Second),
		Home:     getEnv(EnvHome, defaultHome()),
		LogLevel: strings.ToLower(getEnv(EnvLogLevel, "info")),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errors []string

	if u, err := url.Parse(c.APIURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API URL '%s': %v", c.APIURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API URL scheme '%s': must be 'http' or 'https'", u.Scheme))
	} else if u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid API URL '%s': missing host", c.APIURL))
	}

	if c.Timeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid timeout %v: must be at least 1 second", c.Timeout))
	} else if c.Timeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid timeout %v: must be at most 5 minutes", c.Timeout))
	}

	if c.Home == "" {
		errors = append(errors, "home directory cannot be empty")
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Level returns the parsed log level, info when unparseable.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// LogFile is where the log is written.
func (c *Config) LogFile() string {
	return filepath.Join(c.Home, "moneta.log")
}

// DocsURL is the backend's interactive API documentation.
func (c *Config) DocsURL() string {
	return c.APIURL + "/docs"
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".moneta"
	}
	return filepath.Join(home, ".moneta")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
