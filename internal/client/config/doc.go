// Package config loads runtime configuration for the skykeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string   data directory (default: <user config dir>/skykeeper)
//	-s string   default PDS server URL (default: https://bsky.social)
//	-t int      request timeout in seconds (default: 30)
//	-b string   storage backend, file or memory (default: file)
//	-l string   log level (default: info)
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "data_dir": "/home/me/.config/skykeeper",
//	  "server_url": "https://bsky.social",
//	  "request_timeout": "30s",
//	  "backend": "file",
//	  "log_level": "info"
//	}
//
// The store passphrase is never part of the configuration. It is read from
// the SKYKEEPER_PASSPHRASE environment variable or prompted for.
package config
