package config

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/nyakeriga/geoforensics-web-ui/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-t", "-p", "-l"}

// parseFlags overlays cfg with command-line flags.
//
//	-a string    backend base URL
//	-d string    local database path
//	-t duration  per-request timeout
//	-p duration  job polling interval
//	-l string    log level (debug, info, warn, error)
//
// Only the flags above are picked out of os.Args; others are left for
// other components.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("geoforensics", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.DurationVar(&cfg.PollInterval, "p", cfg.PollInterval, "job polling interval")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
