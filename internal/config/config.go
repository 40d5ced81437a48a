// SPDX-License-Identifier: MIT

// Package config loads pipeline settings from a YAML file, environment
// overrides, and the line-oriented source/mapping lists.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the resolved tool configuration. Components receive the
// pieces they need through their constructors; nothing reads ambient
// global state after startup.
type Settings struct {
	ConfigDir string        `yaml:"configDir"`
	DataDir   string        `yaml:"dataDir"`
	LogLevel  string        `yaml:"logLevel"`
	Listen    string        `yaml:"listen"`
	Fetch     FetchSettings `yaml:"fetch"`
	Match     MatchSettings `yaml:"match"`
}

// FetchSettings bounds the concurrent source downloads.
type FetchSettings struct {
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	RatePerSec  float64       `yaml:"ratePerSec"`
}

// MatchSettings tunes normalization and fuzzy matching.
type MatchSettings struct {
	FuzzyMaxDist int      `yaml:"fuzzyMaxDist"`
	TagPatterns  []string `yaml:"tagPatterns"`
}

// Defaults returns the baseline settings before file and environment
// overrides.
func Defaults() Settings {
	return Settings{
		ConfigDir: "config",
		DataDir:   "playlists",
		LogLevel:  "info",
		Listen:    ":8080",
		Fetch: FetchSettings{
			Timeout:     30 * time.Second,
			Concurrency: 4,
			RatePerSec:  8,
		},
		Match: MatchSettings{
			FuzzyMaxDist: 2,
		},
	}
}

// Load resolves settings: defaults, then the optional YAML file, then
// M3UFORGE_* environment overrides.
func Load(path string) (Settings, error) {
	s := Defaults()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Optional file; defaults and env apply.
		case err != nil:
			return s, &Error{File: path, Msg: err.Error()}
		default:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return s, &Error{File: path, Msg: fmt.Sprintf("parse yaml: %v", err)}
			}
		}
	}

	s.ConfigDir = ParseString("M3UFORGE_CONFIG_DIR", s.ConfigDir)
	s.DataDir = ParseString("M3UFORGE_DATA_DIR", s.DataDir)
	s.LogLevel = ParseString("M3UFORGE_LOG_LEVEL", s.LogLevel)
	s.Listen = ParseString("M3UFORGE_LISTEN", s.Listen)
	s.Fetch.Timeout = ParseDuration("M3UFORGE_FETCH_TIMEOUT", s.Fetch.Timeout)
	s.Fetch.Concurrency = ParseInt("M3UFORGE_FETCH_CONCURRENCY", s.Fetch.Concurrency)
	s.Match.FuzzyMaxDist = ParseInt("M3UFORGE_FUZZY_MAX_DIST", s.Match.FuzzyMaxDist)

	if err := s.validate(); err != nil {
		return s, err
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.ConfigDir == "" {
		return Errorf("configDir must not be empty")
	}
	if s.DataDir == "" {
		return Errorf("dataDir must not be empty")
	}
	if s.Fetch.Concurrency < 1 {
		return Errorf("fetch concurrency must be at least 1, got %d", s.Fetch.Concurrency)
	}
	if s.Fetch.Timeout <= 0 {
		return Errorf("fetch timeout must be positive, got %s", s.Fetch.Timeout)
	}
	if s.Match.FuzzyMaxDist < 0 {
		return Errorf("fuzzy distance must not be negative, got %d", s.Match.FuzzyMaxDist)
	}
	return nil
}

// Paths for the line-oriented configuration files under ConfigDir.
func (s Settings) ProvidersPath() string  { return filepath.Join(s.ConfigDir, "providers.txt") }
func (s Settings) EPGSourcesPath() string { return filepath.Join(s.ConfigDir, "epg_sources.txt") }
func (s Settings) CommandsPath() string   { return filepath.Join(s.ConfigDir, "commands.txt") }
func (s Settings) EPGIDsPath() string     { return filepath.Join(s.ConfigDir, "epg_ids.txt") }
func (s Settings) CountriesPath() string  { return filepath.Join(s.ConfigDir, "country_tokens.txt") }
func (s Settings) LogosPath() string      { return filepath.Join(s.ConfigDir, "logos.txt") }
