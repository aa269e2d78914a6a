// Package config loads runtime configuration for the passlock CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   directory holding the encrypted vault files
//	-b string   loopback address:port the extension bridge listens on
//	-t int      session inactivity timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "5m" or integer nanoseconds:
//
//	{
//	  "vaults_dir": "/home/alice/.config/passlock/vaults",
//	  "bridge_addr": "127.0.0.1:9123",
//	  "session_timeout": "5m",
//	  "autolock_poll_interval": "1s",
//	  "clipboard_clear_delay": "30s"
//	}
//
// Primary API
//
//   - type Config                     — holds all runtime settings
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
