// SPDX-License-Identifier: MIT

// Package logo assigns logo URLs to channels from a mapping table with
// ordered fallback rules.
package logo

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/m3uforge/m3uforge/internal/channel"
	"github.com/m3uforge/m3uforge/internal/log"
	"github.com/m3uforge/m3uforge/internal/normalize"
)

type rule struct {
	key string // normalized mapping key
	url string
}

// Map holds logo mappings keyed by normalized channel name. Exact
// entries are preferred; fallback rules (partial-name containment,
// then stream-domain tokens) run only on an exact miss. The map is
// read-only after Freeze.
type Map struct {
	namer  *normalize.Namer
	exact  map[string]string
	rules  []rule
	frozen bool
}

// New returns an empty logo map. A nil namer uses the default tag set.
func New(namer *normalize.Namer) *Map {
	if namer == nil {
		namer = normalize.NewNamer(nil)
	}
	return &Map{namer: namer, exact: make(map[string]string)}
}

// Add registers a mapping entry. The entry becomes both an exact match
// and a partial-name fallback rule. First registration of a key wins.
func (m *Map) Add(name, logoURL string) {
	key := m.namer.Key(name)
	if key == "" || logoURL == "" {
		return
	}
	if _, ok := m.exact[key]; ok {
		return
	}
	m.exact[key] = logoURL
	m.rules = append(m.rules, rule{key: key, url: logoURL})
}

// Harvest folds EPG channel icons in as lowest-priority entries: they
// fill gaps but never shadow configured mappings.
func (m *Map) Harvest(icons map[string]string) {
	keys := make([]string, 0, len(icons))
	for k := range icons {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.Add(k, icons[k])
	}
}

// Freeze orders the fallback rules longest key first (then lexical) so
// partial matching is deterministic and specific entries win.
func (m *Map) Freeze() {
	sort.SliceStable(m.rules, func(i, j int) bool {
		if len(m.rules[i].key) != len(m.rules[j].key) {
			return len(m.rules[i].key) > len(m.rules[j].key)
		}
		return m.rules[i].key < m.rules[j].key
	})
	m.frozen = true
}

// Len returns the number of exact entries.
func (m *Map) Len() int {
	return len(m.exact)
}

// Find resolves a logo for the channel name, falling back to partial
// name containment and finally to mapping-key tokens found in the
// stream URL host.
func (m *Map) Find(name, streamURL string) (string, bool) {
	if !m.frozen {
		m.Freeze()
	}
	key := m.namer.Key(name)
	if key == "" {
		return "", false
	}
	if u, ok := m.exact[key]; ok {
		return u, true
	}
	for _, r := range m.rules {
		if strings.Contains(key, r.key) || strings.Contains(r.key, key) {
			return r.url, true
		}
	}
	if host := hostOf(streamURL); host != "" {
		for _, r := range m.rules {
			if tokenInHost(r.key, host) {
				return r.url, true
			}
		}
	}
	return "", false
}

func hostOf(streamURL string) string {
	u, err := url.Parse(streamURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// tokenInHost reports whether any mapping-key token longer than two
// runes appears in the stream host.
func tokenInHost(key, host string) bool {
	for _, tok := range strings.Fields(key) {
		if len(tok) > 2 && strings.Contains(host, tok) {
			return true
		}
	}
	return false
}

// Assigner is the pipeline stage wrapper around a Map.
type Assigner struct {
	logos *Map
}

// NewAssigner returns an assigner over the given map.
func NewAssigner(logos *Map) *Assigner {
	return &Assigner{logos: logos}
}

// Apply fills Logo for every channel missing one and returns the
// number of channels left without a logo.
func (a *Assigner) Apply(ctx context.Context, set *channel.Set) int {
	logger := log.WithComponentFromContext(ctx, "logo")
	misses := 0
	for _, ch := range set.Items() {
		if ch.Logo != "" {
			continue
		}
		u, ok := a.logos.Find(ch.Name, ch.URL)
		if !ok {
			misses++
			logger.Debug().Str("channel", ch.Name).Msg("no logo match")
			continue
		}
		ch.Logo = u
		ch.Attrs.Set(channel.AttrTvgLogo, u)
	}
	return misses
}
