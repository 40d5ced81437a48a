// SPDX-License-Identifier: MIT

// Command m3uforge ingests IPTV playlists from the configured sources,
// normalizes, deduplicates and enriches the channels, and writes the
// export formats. One-shot by default; -watch keeps it running and
// reruns the pipeline on configuration changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/m3uforge/m3uforge/internal/config"
	"github.com/m3uforge/m3uforge/internal/daemon"
	"github.com/m3uforge/m3uforge/internal/fetch"
	"github.com/m3uforge/m3uforge/internal/log"
)

const (
	exitRunFailed = 1
	exitConfig    = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configFile = flag.String("config", "m3uforge.yaml", "path to the settings file")
		watch      = flag.Bool("watch", false, "keep running and rerun on config changes")
		initialize = flag.Bool("init", false, "write default config files and exit")
	)
	flag.Parse()

	settings, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfig
	}

	log.Configure(log.Config{Level: settings.LogLevel})
	logger := log.WithComponent("main")

	if *initialize {
		if err := config.Scaffold(settings.ConfigDir); err != nil {
			logger.Error().Err(err).Msg("scaffold failed")
			return exitRunFailed
		}
		logger.Info().Str("dir", settings.ConfigDir).Msg("default config files written")
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := daemon.New(settings, fetch.NewHTTP(settings.Fetch.RatePerSec))

	if *watch {
		err = d.Watch(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	} else {
		_, err = d.RunOnce(ctx)
	}

	if err != nil {
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) {
			logger.Error().Err(err).Msg("configuration error")
			return exitConfig
		}
		logger.Error().Err(err).Msg("run failed")
		return exitRunFailed
	}
	return 0
}
