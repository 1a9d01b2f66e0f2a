package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by parseEnv,
// e.g. GEOFORENSICS_API_BASE_URL.
const EnvPrefix = "GEOFORENSICS"

// parseEnv overlays cfg with the GEOFORENSICS_* environment variables that
// are set. Malformed values are errors rather than silent zeroes.
func parseEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = strings.TrimSpace(v.GetString(key))
		}
	}
	dur := func(key string, dst *time.Duration) error {
		if !v.IsSet(key) {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return fmt.Errorf("%s_%s: %w", EnvPrefix, strings.ToUpper(key), err)
		}
		*dst = d
		return nil
	}
	boolean := func(key string, dst *bool) error {
		if !v.IsSet(key) {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return fmt.Errorf("%s_%s: %w", EnvPrefix, strings.ToUpper(key), err)
		}
		*dst = b
		return nil
	}

	str("api_base_url", &cfg.APIBaseURL)
	str("database_path", &cfg.DatabasePath)
	str("log_level", &cfg.LogLevel)

	if err := dur("request_timeout", &cfg.RequestTimeout); err != nil {
		return err
	}
	if err := dur("poll_interval", &cfg.PollInterval); err != nil {
		return err
	}
	if err := boolean("sequenced_fetches", &cfg.SequencedFetches); err != nil {
		return err
	}
	if err := boolean("quoted_csv", &cfg.QuotedCSV); err != nil {
		return err
	}
	if v.IsSet("max_upload_bytes") {
		n, err := strconv.ParseInt(strings.TrimSpace(v.GetString("max_upload_bytes")), 10, 64)
		if err != nil {
			return fmt.Errorf("%s_MAX_UPLOAD_BYTES: %w", EnvPrefix, err)
		}
		cfg.MaxUploadBytes = n
	}
	return nil
}
