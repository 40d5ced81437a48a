// SPDX-License-Identifier: MIT
package pipeline

import (
	"encoding/json"
	"time"
)

// Report aggregates the outcome of one pipeline run: channel counts,
// per-kind warning counts, and the enrichment misses. Parse- and
// fetch-level failures are absorbed at their stage boundary and only
// surface here.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Stages     []string  `json:"stages"`

	SourcesOK     int `json:"sources_ok"`
	SourcesFailed int `json:"sources_failed"`

	Parsed  int            `json:"parsed"`
	Skipped int            `json:"skipped"`
	Warning map[string]int `json:"warnings,omitempty"`

	Unique           int `json:"unique"`
	DuplicatesMerged int `json:"duplicates_merged"`
	Grouped          int `json:"grouped"`
	EPGMisses        int `json:"epg_misses"`
	LogoMisses       int `json:"logo_misses"`

	ExportBytes map[string]int `json:"export_bytes,omitempty"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func newReport(runID string, stages []string) *Report {
	return &Report{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
		Stages:    stages,
		Warning:   make(map[string]int),
	}
}

func (r *Report) finish(err error) {
	r.FinishedAt = time.Now().UTC()
	r.Success = err == nil
	if err != nil {
		r.Error = err.Error()
	}
}

// JSON serializes the report for the run report file and the status
// endpoint.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
