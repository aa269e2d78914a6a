package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the passlock CLI.
//
// Fields:
//   - VaultsDir: directory where the encrypted vault files live.
//   - BridgeAddr: host:port the extension bridge binds to (loopback only).
//   - SessionTimeout: inactivity window before the auto-lock closes the vault.
//   - AutolockPollInterval: how often the auto-lock monitor checks the clock.
//   - ClipboardClearDelay: how long a copied secret stays on the clipboard.
type Config struct {
	VaultsDir            string
	BridgeAddr           string
	SessionTimeout       time.Duration
	AutolockPollInterval time.Duration
	ClipboardClearDelay  time.Duration
}

// LoadDefaults populates c with sensible defaults. The vaults directory
// defaults to the user's config dir; if that cannot be resolved, a relative
// "vaults" directory is used.
func (c *Config) LoadDefaults() {
	c.VaultsDir = defaultVaultsDir()
	c.BridgeAddr = "127.0.0.1:9123"
	c.SessionTimeout = 5 * time.Minute
	c.AutolockPollInterval = time.Second
	c.ClipboardClearDelay = 30 * time.Second
}

func defaultVaultsDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "vaults"
	}
	return filepath.Join(base, "passlock", "vaults")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
