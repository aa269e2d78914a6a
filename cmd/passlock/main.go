package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dmitrenko/passlock/internal/buildinfo"
	"github.com/dmitrenko/passlock/internal/cli"
	"github.com/dmitrenko/passlock/internal/config"
	"github.com/dmitrenko/passlock/internal/logging"
	"github.com/dmitrenko/passlock/internal/nativehost"
)

// launchedByBrowser reports whether the process was started as a native
// messaging host: browsers pass the extension origin (Chrome) or the
// manifest path plus extension id (Firefox) as arguments.
func launchedByBrowser(args []string) bool {
	for _, a := range args {
		if strings.HasPrefix(a, "chrome-extension://") ||
			strings.HasPrefix(a, "moz-extension://") ||
			strings.HasSuffix(a, "@passlock") {
			return true
		}
	}
	return false
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	if launchedByBrowser(os.Args[1:]) {
		// Stdout is the browser pipe here, so the log stream goes to stderr
		// and nothing else may write to stdout.
		logger := logging.NewDefault(os.Stderr)
		app, err := cli.NewApp(cfg, logger)
		if err != nil {
			logger.Error(ctx, "startup failed", "error", err)
			os.Exit(1)
		}
		host := nativehost.New(os.Stdin, os.Stdout, app.Handle(), logger)
		if err := host.Run(ctx); err != nil {
			logger.Error(ctx, "native host failed", "error", err)
			os.Exit(1)
		}
		return
	}

	buildinfo.PrintBuildData(os.Stdout)

	logger := logging.NewDefault(os.Stderr)
	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
