package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nyakeriga/geoforensics-web-ui/internal/flagx"
	"github.com/nyakeriga/geoforensics-web-ui/internal/timex"
)

// JsonConfig mirrors the JSON file. Absent keys leave the current value.
type JsonConfig struct {
	APIBaseURL       *string         `json:"api_base_url"`
	DatabasePath     *string         `json:"database_path"`
	RequestTimeout   *timex.Duration `json:"request_timeout"`
	PollInterval     *timex.Duration `json:"poll_interval"`
	MaxUploadBytes   *int64          `json:"max_upload_bytes"`
	SequencedFetches *bool           `json:"sequenced_fetches"`
	QuotedCSV        *bool           `json:"quoted_csv"`
	LogLevel         *string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c or -config, if any.
func parseJson(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if jc.APIBaseURL != nil {
		cfg.APIBaseURL = *jc.APIBaseURL
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.PollInterval != nil {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.MaxUploadBytes != nil {
		cfg.MaxUploadBytes = *jc.MaxUploadBytes
	}
	if jc.SequencedFetches != nil {
		cfg.SequencedFetches = *jc.SequencedFetches
	}
	if jc.QuotedCSV != nil {
		cfg.QuotedCSV = *jc.QuotedCSV
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	return nil
}
