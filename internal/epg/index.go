// SPDX-License-Identifier: MIT
package epg

import (
	"sort"

	"github.com/m3uforge/m3uforge/internal/normalize"
)

// Index maps normalized channel names to EPG identifiers. It is built
// once per run and read-only afterwards; Freeze fixes the candidate
// order so fuzzy scans never depend on map iteration order.
type Index struct {
	namer  *normalize.Namer
	byKey  map[string]string
	icons  map[string]string
	keys   []string
	frozen bool
}

// NewIndex returns an empty index using the given namer for keys.
// A nil namer uses the default tag set.
func NewIndex(namer *normalize.Namer) *Index {
	if namer == nil {
		namer = normalize.NewNamer(nil)
	}
	return &Index{
		namer: namer,
		byKey: make(map[string]string),
		icons: make(map[string]string),
	}
}

// Add registers a display name (or alias) for an identifier. The first
// registration of a key wins; guide sources are loaded in configuration
// order, so earlier sources take precedence.
func (ix *Index) Add(name, id string) {
	key := ix.namer.Key(name)
	if key == "" || id == "" {
		return
	}
	if _, ok := ix.byKey[key]; !ok {
		ix.byKey[key] = id
	}
}

// AddChannel registers an XMLTV channel: every display name becomes an
// alias, and the icon is retained for logo fallback harvesting.
func (ix *Index) AddChannel(ch Channel) {
	for _, dn := range ch.DisplayNames {
		ix.Add(dn, ch.ID)
		if ch.Icon != nil && ch.Icon.Src != "" {
			key := ix.namer.Key(dn)
			if _, ok := ix.icons[key]; !ok && key != "" {
				ix.icons[key] = ch.Icon.Src
			}
		}
	}
}

// Freeze sorts the key list and marks the index read-only.
func (ix *Index) Freeze() {
	ix.keys = make([]string, 0, len(ix.byKey))
	for k := range ix.byKey {
		ix.keys = append(ix.keys, k)
	}
	sort.Strings(ix.keys)
	ix.frozen = true
}

// Len returns the number of indexed name keys.
func (ix *Index) Len() int {
	return len(ix.byKey)
}

// Icons returns the harvested icon URLs keyed by normalized name.
func (ix *Index) Icons() map[string]string {
	return ix.icons
}

// Lookup returns the identifier for an exact normalized-name hit.
func (ix *Index) Lookup(name string) (string, bool) {
	id, ok := ix.byKey[ix.namer.Key(name)]
	return id, ok
}
