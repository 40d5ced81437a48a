// SPDX-License-Identifier: MIT

// Package daemon runs the pipeline in watch mode: an initial run, then
// a rerun whenever the configuration changes, with the status surface
// served alongside.
package daemon

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/m3uforge/m3uforge/internal/api"
	"github.com/m3uforge/m3uforge/internal/config"
	"github.com/m3uforge/m3uforge/internal/export"
	"github.com/m3uforge/m3uforge/internal/fetch"
	"github.com/m3uforge/m3uforge/internal/log"
	"github.com/m3uforge/m3uforge/internal/pipeline"
)

// debounce coalesces bursts of file events into one rerun; editors
// tend to emit several writes per save.
const debounce = 2 * time.Second

// Daemon wires the pipeline, the config watcher, and the HTTP surface.
type Daemon struct {
	settings config.Settings
	fetcher  fetch.Fetcher
	server   *api.Server
}

// New returns a daemon for the given settings.
func New(settings config.Settings, fetcher fetch.Fetcher) *Daemon {
	return &Daemon{
		settings: settings,
		fetcher:  fetcher,
		server:   api.NewServer(settings.DataDir),
	}
}

// RunOnce executes a single pipeline run with freshly loaded
// configuration and writes the run report on success.
func (d *Daemon) RunOnce(ctx context.Context) (*pipeline.Report, error) {
	runner, err := pipeline.New(d.settings, d.fetcher)
	if err != nil {
		return nil, err
	}
	report, err := runner.Run(ctx)
	if err != nil {
		return report, err
	}
	if data, jerr := report.JSON(); jerr == nil {
		if werr := export.WriteReport(d.settings.DataDir, data); werr != nil {
			logger := log.WithComponentFromContext(ctx, "daemon")
			logger.Warn().Err(werr).Msg("run report not written")
		}
	}
	d.server.SetReport(report)
	return report, nil
}

// Watch runs the daemon until ctx is canceled: initial run, HTTP
// server, and config-triggered reruns. A failed rerun keeps the last
// committed outputs in place.
func (d *Daemon) Watch(ctx context.Context) error {
	logger := log.WithComponentFromContext(ctx, "daemon")

	if _, err := d.RunOnce(ctx); err != nil {
		// Config errors should still surface immediately; a run that
		// failed on unreachable sources will be retried on the next
		// config touch.
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) {
			return err
		}
		logger.Error().Err(err).Msg("initial run failed, watching for config changes")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(d.settings.ConfigDir); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              d.settings.Listen,
		Handler:           d.server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", d.settings.Listen).Msg("status server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-serveErr:
			return err
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug().Str("file", ev.Name).Msg("config change detected")
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("config watcher error")
		case <-pending:
			if _, err := d.RunOnce(ctx); err != nil {
				logger.Error().Err(err).Msg("rerun failed, keeping previous outputs")
			}
		}
	}
}
