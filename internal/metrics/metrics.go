// SPDX-License-Identifier: MIT

// Package metrics exposes pipeline instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	channelsImported = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "m3uforge_channels_imported",
		Help: "Channels imported across all sources in the last run",
	})

	channelsUnique = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "m3uforge_channels_unique",
		Help: "Unique channels after deduplication in the last run",
	})

	sourceFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "m3uforge_source_fetch_total",
		Help: "Playlist source fetch attempts by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	parseWarningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "m3uforge_parse_warnings_total",
		Help: "Skipped playlist entries by reason",
	}, []string{"reason"})

	enrichmentMisses = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "m3uforge_enrichment_misses",
		Help: "Channels left unenriched in the last run by kind",
	}, []string{"kind"}) // kind=epg|logo

	exportBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "m3uforge_export_bytes",
		Help: "Exported output size in bytes by format (last run)",
	}, []string{"format"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "m3uforge_run_duration_seconds",
		Help:    "Wall-clock duration of complete pipeline runs",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "m3uforge_runs_total",
		Help: "Pipeline runs by outcome",
	}, []string{"outcome"}) // outcome=success|failure
)

// RecordImport sets the channel counts of the last run.
func RecordImport(imported, unique int) {
	channelsImported.Set(float64(imported))
	channelsUnique.Set(float64(unique))
}

// RecordSourceFetch counts one source fetch attempt.
func RecordSourceFetch(ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	sourceFetchTotal.WithLabelValues(outcome).Inc()
}

// RecordParseWarning counts one skipped playlist entry.
func RecordParseWarning(reason string) {
	parseWarningsTotal.WithLabelValues(reason).Inc()
}

// RecordEnrichmentMisses sets the per-kind miss gauges of the last run.
func RecordEnrichmentMisses(epg, logo int) {
	enrichmentMisses.WithLabelValues("epg").Set(float64(epg))
	enrichmentMisses.WithLabelValues("logo").Set(float64(logo))
}

// RecordExport sets the output size for one export format.
func RecordExport(format string, size int) {
	exportBytes.WithLabelValues(format).Set(float64(size))
}

// RecordRun counts a finished run and its duration.
func RecordRun(ok bool, d time.Duration) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	runsTotal.WithLabelValues(outcome).Inc()
	runDuration.Observe(d.Seconds())
}
