package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrenko/passlock/internal/flagx"
	"github.com/dmitrenko/passlock/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "5m" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	VaultsDir            string         `json:"vaults_dir"`
	BridgeAddr           string         `json:"bridge_addr"`
	SessionTimeout       timex.Duration `json:"session_timeout"`
	AutolockPollInterval timex.Duration `json:"autolock_poll_interval"`
	ClipboardClearDelay  timex.Duration `json:"clipboard_clear_delay"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Only fields present in the JSON override the config; zero values (an
// absent key) leave the earlier value in place. Panics on read or
// unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.VaultsDir != "" {
		cfg.VaultsDir = jc.VaultsDir
	}
	if jc.BridgeAddr != "" {
		cfg.BridgeAddr = jc.BridgeAddr
	}
	if jc.SessionTimeout.Duration != 0 {
		cfg.SessionTimeout = time.Duration(jc.SessionTimeout.Duration)
	}
	if jc.AutolockPollInterval.Duration != 0 {
		cfg.AutolockPollInterval = time.Duration(jc.AutolockPollInterval.Duration)
	}
	if jc.ClipboardClearDelay.Duration != 0 {
		cfg.ClipboardClearDelay = time.Duration(jc.ClipboardClearDelay.Duration)
	}
}
