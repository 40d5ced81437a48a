// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

var scaffoldFiles = map[string]string{
	"providers.txt": `# M3U provider URLs, one per line.
# https://example.com/playlist.m3u
`,
	"epg_sources.txt": `# EPG (XMLTV) source URLs, one per line. Gzipped sources are fine.
# https://example.com/guide.xml.gz
`,
	"commands.txt": `# Processing pipeline, one stage per line.
IMPORT
GROUP_BY_COUNTRY
APPLY_EPG
APPLY_LOGOS
EXPORT
`,
	"epg_ids.txt": `# Manual EPG ID overrides, channel name=xmltv id, one per line.
# These win over identifiers from the guide sources.
# bbc one=bbc1.uk
`,
	"country_tokens.txt": `# Extra country detection tokens, token=group, one per line.
# united kingdom=UK
`,
	"logos.txt": `# Logo mappings, channel name=logo URL, one per line.
# bbc one=https://example.com/logos/bbc-one.png
`,
}

// Scaffold writes commented default config files into dir, skipping
// any file that already exists.
func Scaffold(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	for name, content := range scaffoldFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
