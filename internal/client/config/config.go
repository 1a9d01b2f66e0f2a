package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config holds runtime settings of the geoforensics client.
type Config struct {
	// APIBaseURL is the scheme and host of the analysis backend.
	APIBaseURL string
	// DatabasePath is the local SQLite file holding the session token and
	// preferences.
	DatabasePath   string
	RequestTimeout time.Duration
	// PollInterval is the delay between fetches while waiting for a job.
	PollInterval   time.Duration
	MaxUploadBytes int64
	// SequencedFetches makes the newest issued job request win over a
	// response that arrives later.
	SequencedFetches bool
	// QuotedCSV parses call-log imports with RFC 4180 quoting.
	QuotedCSV bool
	LogLevel  string
}

// LoadDefaults populates c with the built-in defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.DatabasePath = "geoforensics.db"
	c.RequestTimeout = 30 * time.Second
	c.PollInterval = 2 * time.Second
	c.MaxUploadBytes = 50 << 20
	c.SequencedFetches = false
	c.QuotedCSV = false
	c.LogLevel = "info"
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("api base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api base url %q: want http(s)://host[:port]", c.APIBaseURL)
	}
	if c.DatabasePath == "" {
		return errors.New("database path must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

// LoadConfig applies defaults, then the JSON file, the environment and the
// command-line flags. Later sources override earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
