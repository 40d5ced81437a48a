// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Defaults(), s)
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), "m3uforge.yaml", `
configDir: /etc/m3uforge
logLevel: debug
fetch:
  timeout: 10s
  concurrency: 2
match:
  fuzzyMaxDist: 3
`)
	s, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/etc/m3uforge", s.ConfigDir)
	require.Equal(t, "debug", s.LogLevel)
	require.Equal(t, 10*time.Second, s.Fetch.Timeout)
	require.Equal(t, 2, s.Fetch.Concurrency)
	require.Equal(t, 3, s.Match.FuzzyMaxDist)
	// Untouched keys keep their defaults.
	require.Equal(t, Defaults().DataDir, s.DataDir)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "m3uforge.yaml", "logLevel: warn\n")
	t.Setenv("M3UFORGE_LOG_LEVEL", "trace")
	t.Setenv("M3UFORGE_FETCH_CONCURRENCY", "9")
	s, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "trace", s.LogLevel)
	require.Equal(t, 9, s.Fetch.Concurrency)
}

func TestEnvParseHelpers(t *testing.T) {
	t.Setenv("M3UFORGE_TEST_STR", "value")
	require.Equal(t, "value", ParseString("M3UFORGE_TEST_STR", "fallback"))
	require.Equal(t, "fallback", ParseString("M3UFORGE_TEST_UNSET", "fallback"))

	t.Setenv("M3UFORGE_TEST_INT", "7")
	require.Equal(t, 7, ParseInt("M3UFORGE_TEST_INT", 1))
	t.Setenv("M3UFORGE_TEST_INT", "not a number")
	require.Equal(t, 1, ParseInt("M3UFORGE_TEST_INT", 1))

	t.Setenv("M3UFORGE_TEST_DUR", "90s")
	require.Equal(t, 90*time.Second, ParseDuration("M3UFORGE_TEST_DUR", time.Second))
	t.Setenv("M3UFORGE_TEST_DUR", "soon")
	require.Equal(t, time.Second, ParseDuration("M3UFORGE_TEST_DUR", time.Second))
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative concurrency", "fetch:\n  concurrency: -1\n"},
		{"negative distance", "match:\n  fuzzyMaxDist: -2\n"},
		{"empty config dir", "configDir: \"\"\n"},
		{"broken yaml", "fetch: [not a map\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "m3uforge.yaml", tt.yaml)
			_, err := Load(path)
			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestLoadProviders(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "providers.txt", `
# main sources
http://host/list.m3u

https://other/list.m3u
file:///tmp/local.m3u
`)
	urls, err := LoadProviders(path)
	require.NoError(t, err)
	require.Equal(t, []string{
		"http://host/list.m3u",
		"https://other/list.m3u",
		"file:///tmp/local.m3u",
	}, urls)
}

func TestLoadProvidersMissingFile(t *testing.T) {
	_, err := LoadProviders(filepath.Join(t.TempDir(), "providers.txt"))
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	require.Contains(t, cfgErr.Error(), "missing")
}

func TestLoadProvidersRejectsNonURL(t *testing.T) {
	path := writeFile(t, t.TempDir(), "providers.txt", "http://ok/list.m3u\nnot a url at all\n")
	_, err := LoadProviders(path)
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, 2, cfgErr.Line)
}

func TestLoadEPGSourcesOptional(t *testing.T) {
	urls, err := LoadEPGSources(filepath.Join(t.TempDir(), "epg_sources.txt"))
	require.NoError(t, err)
	require.Empty(t, urls)
}

func TestLoadStages(t *testing.T) {
	path := writeFile(t, t.TempDir(), "commands.txt", "import\nGroup_By_Country\nEXPORT\n")
	stages, err := LoadStages(path)
	require.NoError(t, err)
	require.Equal(t, []string{"IMPORT", "GROUP_BY_COUNTRY", "EXPORT"}, stages)
}

func TestLoadStagesEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "commands.txt", "# only comments\n\n")
	_, err := LoadStages(path)
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadMappings(t *testing.T) {
	path := writeFile(t, t.TempDir(), "logos.txt", `
# equals and comma forms both work
BBC One=http://logos/bbc1.png
CNN , http://logos/cnn.png
key=value=with=equals
`)
	maps, err := LoadMappings(path)
	require.NoError(t, err)
	require.Equal(t, []Mapping{
		{Key: "BBC One", Value: "http://logos/bbc1.png"},
		{Key: "CNN", Value: "http://logos/cnn.png"},
		{Key: "key", Value: "value=with=equals"},
	}, maps)
}

func TestLoadMappingsMalformedLine(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tokens.txt", "good=US\nno separator here\n")
	_, err := LoadMappings(path)
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, 2, cfgErr.Line)
}

func TestLoadMappingsOptionalFile(t *testing.T) {
	maps, err := LoadMappings(filepath.Join(t.TempDir(), "none.txt"))
	require.NoError(t, err)
	require.Empty(t, maps)
}

func TestConfigFilePaths(t *testing.T) {
	s := Settings{ConfigDir: "/etc/m3uforge"}
	require.Equal(t, "/etc/m3uforge/providers.txt", s.ProvidersPath())
	require.Equal(t, "/etc/m3uforge/epg_sources.txt", s.EPGSourcesPath())
	require.Equal(t, "/etc/m3uforge/commands.txt", s.CommandsPath())
	require.Equal(t, "/etc/m3uforge/epg_ids.txt", s.EPGIDsPath())
	require.Equal(t, "/etc/m3uforge/country_tokens.txt", s.CountriesPath())
	require.Equal(t, "/etc/m3uforge/logos.txt", s.LogosPath())
}

func TestScaffoldDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "providers.txt", "http://mine/list.m3u\n")

	require.NoError(t, Scaffold(dir))
	data, err := os.ReadFile(filepath.Join(dir, "providers.txt"))
	require.NoError(t, err)
	require.Equal(t, "http://mine/list.m3u\n", string(data))

	for _, name := range []string{"epg_sources.txt", "commands.txt", "epg_ids.txt", "country_tokens.txt", "logos.txt"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}
}

func TestErrorFormat(t *testing.T) {
	err := &Error{File: "providers.txt", Line: 3, Msg: "boom"}
	require.Contains(t, err.Error(), "providers.txt")
	require.Contains(t, err.Error(), "3")

	var target *Error
	require.True(t, errors.As(error(err), &target))
}
