package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrenko/passlock/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   directory holding the encrypted vault files (default from Config)
//	-b string   loopback address:port for the extension bridge (default from Config)
//	-t int      session inactivity timeout in seconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-b", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.VaultsDir, "d", cfg.VaultsDir, "directory holding the encrypted vault files")
	fs.StringVar(&cfg.BridgeAddr, "b", cfg.BridgeAddr, "address and port for the extension bridge")
	sessionTimeout := fs.Int("t", int(cfg.SessionTimeout.Seconds()), "session inactivity timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SessionTimeout = time.Duration(*sessionTimeout) * time.Second
}
