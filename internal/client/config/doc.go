// Package config loads runtime configuration for the microblog CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. MICROBLOG_* environment variables.
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   backend base URL
//	-i int      online status check interval (seconds)
//	-d string   data directory
//	-t string   token store: sqlite or keyring
//
// # JSON schema
//
// Intervals may be strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:8000",
//	  "online_check_interval": "5s",
//	  "request_timeout": "15s",
//	  "data_dir": "/home/me/.config/microblog",
//	  "token_store": "keyring",
//	  "log_level": "info",
//	  "log_format": "json",
//	  "wrap_width": 100
//	}
//
// The environment uses the same names in upper case with the MICROBLOG_
// prefix, e.g. MICROBLOG_SERVER_URL or MICROBLOG_REQUEST_TIMEOUT=30s.
package config
