// SPDX-License-Identifier: MIT
package pipeline

import (
	"bytes"
	"context"
	"errors"

	"github.com/m3uforge/m3uforge/internal/channel"
	"github.com/m3uforge/m3uforge/internal/epg"
	"github.com/m3uforge/m3uforge/internal/export"
	"github.com/m3uforge/m3uforge/internal/fetch"
	"github.com/m3uforge/m3uforge/internal/log"
	"github.com/m3uforge/m3uforge/internal/logo"
	"github.com/m3uforge/m3uforge/internal/metrics"
	"github.com/m3uforge/m3uforge/internal/playlist"
)

// runImport fetches every provider, parses the payloads in source
// configuration order, and deduplicates the combined sequence into the
// run's channel set. A failed source contributes nothing and one
// warning; zero channels overall is fatal.
func (r *Runner) runImport(ctx context.Context, st *runState) error {
	logger := log.WithComponentFromContext(ctx, "import")

	results := fetch.All(ctx, r.fetcher, r.providers, r.settings.Fetch.Concurrency, r.settings.Fetch.Timeout)

	var raw []*channel.Channel
	for _, res := range results {
		if res.Err != nil {
			st.report.SourcesFailed++
			st.report.Warning["source_fetch"]++
			metrics.RecordSourceFetch(false)
			logger.Warn().
				Err(res.Err).
				Str("source", res.URL).
				Msg("source fetch failed, continuing without it")
			continue
		}
		st.report.SourcesOK++
		metrics.RecordSourceFetch(true)

		parsed, err := playlist.Parse(bytes.NewReader(res.Data))
		if err != nil {
			st.report.SourcesFailed++
			st.report.Warning["source_parse"]++
			logger.Warn().Err(err).Str("source", res.URL).Msg("source unreadable, skipped")
			continue
		}
		for _, w := range parsed.Warnings {
			st.report.Warning[string(w.Reason)]++
			metrics.RecordParseWarning(string(w.Reason))
			logger.Debug().
				Str("source", res.URL).
				Int("line", w.Line).
				Str("reason", string(w.Reason)).
				Msg("skipped playlist entry")
		}
		// Re-base source order so channels keep their position across
		// the whole configured source list.
		for _, ch := range parsed.Channels {
			ch.SourceOrder = len(raw)
			raw = append(raw, ch)
		}
		st.report.Parsed += len(parsed.Channels)
		st.report.Skipped += len(parsed.Warnings)
	}

	if len(raw) == 0 {
		return ErrNoChannels
	}

	st.set = r.dedupe.Collapse(raw)
	st.report.Unique = st.set.Len()
	st.report.DuplicatesMerged = len(raw) - st.set.Len()
	metrics.RecordImport(len(raw), st.set.Len())

	logger.Info().
		Str("event", "import.done").
		Int("imported", len(raw)).
		Int("unique", st.set.Len()).
		Int("sources_ok", st.report.SourcesOK).
		Int("sources_failed", st.report.SourcesFailed).
		Msg("import completed")
	return nil
}

// runGroup labels every still-ungrouped channel. Rerunning on a fully
// grouped set is a no-op.
func (r *Runner) runGroup(ctx context.Context, st *runState) error {
	st.report.Grouped = r.grouper.Apply(st.set)
	logger := log.WithComponentFromContext(ctx, "group")
	logger.Info().
		Str("event", "group.done").
		Int("labeled", st.report.Grouped).
		Msg("grouping completed")
	return nil
}

// runEPG builds the EPG index from the configured guide sources and
// attaches identifiers. Guide icons are harvested into the logo map as
// lowest-priority fallback entries.
func (r *Runner) runEPG(ctx context.Context, st *runState) error {
	logger := log.WithComponentFromContext(ctx, "epg")

	if st.epgIndex == nil {
		st.epgIndex = r.buildEPGIndex(ctx, st)
	}
	matcher := epg.NewMatcher(st.epgIndex, r.namer, r.settings.Match.FuzzyMaxDist)
	st.report.EPGMisses = matcher.Apply(ctx, st.set)
	r.logos.Harvest(st.epgIndex.Icons())

	logger.Info().
		Str("event", "epg.done").
		Int("index_size", st.epgIndex.Len()).
		Int("misses", st.report.EPGMisses).
		Msg("EPG matching completed")
	return nil
}

func (r *Runner) buildEPGIndex(ctx context.Context, st *runState) *epg.Index {
	logger := log.WithComponentFromContext(ctx, "epg")
	index := epg.NewIndex(r.namer)

	// Manual overrides register first; the index keeps the first
	// registration for a key, so they win over guide aliases.
	for _, m := range r.epgOverrides {
		index.Add(m.Key, m.Value)
	}

	results := fetch.All(ctx, r.fetcher, r.epgSources, r.settings.Fetch.Concurrency, r.settings.Fetch.Timeout)
	for _, res := range results {
		if res.Err != nil {
			st.report.Warning["epg_fetch"]++
			logger.Warn().Err(res.Err).Str("source", res.URL).Msg("EPG source fetch failed, continuing without it")
			continue
		}
		channels, err := epg.ParseXMLTV(bytes.NewReader(res.Data))
		if err != nil {
			st.report.Warning["epg_parse"]++
			logger.Warn().Err(err).Str("source", res.URL).Msg("EPG source unreadable, skipped")
			continue
		}
		for _, ch := range channels {
			index.AddChannel(ch)
		}
	}
	index.Freeze()
	return index
}

// runLogos assigns logo URLs from the mapping table.
func (r *Runner) runLogos(ctx context.Context, st *runState) error {
	st.report.LogoMisses = logo.NewAssigner(r.logos).Apply(ctx, st.set)
	metrics.RecordEnrichmentMisses(st.report.EPGMisses, st.report.LogoMisses)
	logger := log.WithComponentFromContext(ctx, "logo")
	logger.Info().
		Str("event", "logo.done").
		Int("misses", st.report.LogoMisses).
		Msg("logo assignment completed")
	return nil
}

// runExport renders every output format from the finished set and
// commits them atomically.
func (r *Runner) runExport(ctx context.Context, st *runState) error {
	if st.set == nil || st.set.Len() == 0 {
		return errors.New("nothing to export")
	}
	rendered, err := export.Render(ctx, st.set)
	if err != nil {
		return err
	}
	if err := export.Commit(ctx, r.settings.DataDir, rendered); err != nil {
		return err
	}
	st.report.ExportBytes = make(map[string]int, len(rendered))
	for format, data := range rendered {
		st.report.ExportBytes[string(format)] = len(data)
	}
	return nil
}
