// SPDX-License-Identifier: MIT

// Package pipeline orchestrates the configured processing stages over
// one shared channel set.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m3uforge/m3uforge/internal/channel"
	"github.com/m3uforge/m3uforge/internal/config"
	"github.com/m3uforge/m3uforge/internal/dedup"
	"github.com/m3uforge/m3uforge/internal/epg"
	"github.com/m3uforge/m3uforge/internal/fetch"
	"github.com/m3uforge/m3uforge/internal/group"
	"github.com/m3uforge/m3uforge/internal/log"
	"github.com/m3uforge/m3uforge/internal/logo"
	"github.com/m3uforge/m3uforge/internal/metrics"
	"github.com/m3uforge/m3uforge/internal/normalize"
)

// Valid stage names. The registry is extensible: every known stage is
// an entry in the runner's stage table.
const (
	StageImport         = "IMPORT"
	StageGroupByCountry = "GROUP_BY_COUNTRY"
	StageApplyEPG       = "APPLY_EPG"
	StageApplyLogos     = "APPLY_LOGOS"
	StageExport         = "EXPORT"
)

// ErrNoChannels is returned when no source contributed a single
// channel; a run with nothing to process fails and writes no output.
var ErrNoChannels = errors.New("no channels imported from any source")

// Runner owns the channel set for the duration of one run and hands it
// to each configured stage in turn.
type Runner struct {
	settings config.Settings
	fetcher  fetch.Fetcher

	stages       []string
	providers    []string
	epgSources   []string
	epgOverrides []config.Mapping

	namer   *normalize.Namer
	dedupe  *dedup.Deduplicator
	grouper *group.Grouper
	logos   *logo.Map

	stageFns map[string]func(context.Context, *runState) error
}

// runState is the mutable state threaded through one run.
type runState struct {
	set      *channel.Set
	report   *Report
	epgIndex *epg.Index
}

// New loads the pipeline configuration and validates it up front: the
// stage list, the provider list, and every mapping table. An unknown
// stage name is a configuration error before any import side effect.
func New(settings config.Settings, fetcher fetch.Fetcher) (*Runner, error) {
	r := &Runner{
		settings: settings,
		fetcher:  fetcher,
		namer:    normalize.NewNamer(settings.Match.TagPatterns),
	}
	r.dedupe = dedup.New(r.namer)
	r.stageFns = map[string]func(context.Context, *runState) error{
		StageImport:         r.runImport,
		StageGroupByCountry: r.runGroup,
		StageApplyEPG:       r.runEPG,
		StageApplyLogos:     r.runLogos,
		StageExport:         r.runExport,
	}

	stages, err := config.LoadStages(settings.CommandsPath())
	if err != nil {
		return nil, err
	}
	seenImport := false
	for _, name := range stages {
		if _, ok := r.stageFns[name]; !ok {
			return nil, &config.Error{File: settings.CommandsPath(), Msg: fmt.Sprintf("unknown stage %q", name)}
		}
		if name == StageImport {
			seenImport = true
		} else if !seenImport {
			return nil, &config.Error{File: settings.CommandsPath(), Msg: fmt.Sprintf("stage %s requires IMPORT to run first", name)}
		}
	}
	r.stages = stages

	if r.providers, err = config.LoadProviders(settings.ProvidersPath()); err != nil {
		return nil, err
	}
	if r.epgSources, err = config.LoadEPGSources(settings.EPGSourcesPath()); err != nil {
		return nil, err
	}
	if r.epgOverrides, err = config.LoadMappings(settings.EPGIDsPath()); err != nil {
		return nil, err
	}

	tokens, err := config.LoadMappings(settings.CountriesPath())
	if err != nil {
		return nil, err
	}
	rules := make([]group.Rule, 0, len(tokens))
	for _, m := range tokens {
		rules = append(rules, group.Rule{Token: m.Key, Group: m.Value})
	}
	rules = append(rules, group.DefaultRules...)
	r.grouper = group.New(rules)

	logoEntries, err := config.LoadMappings(settings.LogosPath())
	if err != nil {
		return nil, err
	}
	r.logos = logo.New(r.namer)
	for _, m := range logoEntries {
		r.logos.Add(m.Key, m.Value)
	}

	return r, nil
}

// Run executes the configured stages in order. Stage-internal failures
// (one unreachable source, one malformed entry) are absorbed into the
// report; a fatal error aborts the run with no output written.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	ctx = log.ContextWithRunID(ctx, runID)
	logger := log.WithComponentFromContext(ctx, "pipeline")

	report := newReport(runID, r.stages)
	st := &runState{report: report}

	logger.Info().
		Str("event", "run.start").
		Strs("stages", r.stages).
		Int("providers", len(r.providers)).
		Msg("starting pipeline run")

	var runErr error
	for _, name := range r.stages {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		start := time.Now()
		if err := r.stageFns[name](ctx, st); err != nil {
			runErr = fmt.Errorf("stage %s: %w", name, err)
			break
		}
		logger.Info().
			Str("event", "stage.done").
			Str("stage", name).
			Dur("elapsed", time.Since(start)).
			Msg("stage completed")
	}

	report.finish(runErr)
	metrics.RecordRun(runErr == nil, report.FinishedAt.Sub(report.StartedAt))

	if runErr != nil {
		logger.Error().Err(runErr).Str("event", "run.failed").Msg("pipeline run failed")
		return report, runErr
	}
	logger.Info().
		Str("event", "run.success").
		Int("unique", report.Unique).
		Int("duplicates_merged", report.DuplicatesMerged).
		Int("epg_misses", report.EPGMisses).
		Msg("pipeline run completed")
	return report, nil
}
