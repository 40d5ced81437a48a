// SPDX-License-Identifier: MIT
package epg

import (
	"context"
	"unicode/utf8"

	"github.com/m3uforge/m3uforge/internal/channel"
	"github.com/m3uforge/m3uforge/internal/log"
	"github.com/m3uforge/m3uforge/internal/normalize"
)

// Matcher attaches EPG identifiers to channels that lack one.
type Matcher struct {
	index   *Index
	namer   *normalize.Namer
	maxDist int
}

// NewMatcher returns a matcher with the given base edit-distance
// threshold. Longer names get a proportionally larger budget so a
// single fixed threshold does not starve verbose channel names.
func NewMatcher(index *Index, namer *normalize.Namer, maxDist int) *Matcher {
	if namer == nil {
		namer = normalize.NewNamer(nil)
	}
	return &Matcher{index: index, namer: namer, maxDist: maxDist}
}

// Apply fills EPGID for every channel missing one and returns the
// number of unmatched channels. A miss is an unmet enrichment, not an
// error; it is logged once per channel at debug level.
func (m *Matcher) Apply(ctx context.Context, set *channel.Set) int {
	logger := log.WithComponentFromContext(ctx, "epg")
	misses := 0
	for _, ch := range set.Items() {
		if ch.EPGID != "" {
			continue
		}
		id, ok := m.index.Match(ch.Name, m.threshold(ch.Name))
		if !ok {
			misses++
			logger.Debug().Str("channel", ch.Name).Msg("no EPG match")
			continue
		}
		ch.EPGID = id
		ch.Attrs.Set(channel.AttrTvgID, id)
	}
	return misses
}

// threshold scales the edit-distance budget with the key length:
// the base threshold under 20 runes, one edit per 10 runes above.
func (m *Matcher) threshold(name string) int {
	key := m.namer.Key(name)
	if n := utf8.RuneCountInString(key); n >= 20 {
		if scaled := n / 10; scaled > m.maxDist {
			return scaled
		}
	}
	return m.maxDist
}
