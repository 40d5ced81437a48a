// SPDX-License-Identifier: MIT
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/renameio/v2"

	"github.com/m3uforge/m3uforge/internal/log"
	"github.com/m3uforge/m3uforge/internal/metrics"
)

// Commit writes every rendered output into dataDir. Each file is
// written to a temp file, fsynced and renamed into place, so a crashed
// run never leaves a partially written output behind.
func Commit(ctx context.Context, dataDir string, rendered map[Format][]byte) error {
	logger := log.WithComponentFromContext(ctx, "export")

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	formats := make([]Format, 0, len(rendered))
	for f := range rendered {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })

	for _, format := range formats {
		name, ok := FileNames[format]
		if !ok {
			return fmt.Errorf("no file name for format %q", format)
		}
		path := filepath.Join(dataDir, name)
		if err := writeAtomic(path, rendered[format]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		metrics.RecordExport(string(format), len(rendered[format]))
		logger.Info().
			Str("event", "export.write").
			Str("path", path).
			Int("bytes", len(rendered[format])).
			Msg("output written")
	}
	return nil
}

// WriteReport atomically writes the serialized run report next to the
// exports.
func WriteReport(dataDir string, data []byte) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return writeAtomic(filepath.Join(dataDir, "latest_run.json"), data)
}

func writeAtomic(path string, data []byte) error {
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return err
	}
	return pending.CloseAtomicallyReplace()
}
