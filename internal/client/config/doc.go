// Package config loads runtime configuration for the geoforensics client.
//
// Sources, in increasing precedence:
//
//  1. Built-in defaults ((*Config).LoadDefaults).
//  2. A JSON file named with -c or -config.
//  3. GEOFORENSICS_* environment variables.
//  4. Command-line flags -a, -d, -t, -p and -l.
//
// Durations in the JSON file are Go duration strings or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "https://forensics.example.org",
//	  "database_path": "/var/lib/geoforensics/client.db",
//	  "request_timeout": "30s",
//	  "poll_interval": "2s",
//	  "max_upload_bytes": 52428800,
//	  "sequenced_fetches": true,
//	  "quoted_csv": true,
//	  "log_level": "debug"
//	}
package config
