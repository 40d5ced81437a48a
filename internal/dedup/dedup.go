// SPDX-License-Identifier: MIT

// Package dedup collapses playlist entries that represent the same
// logical channel.
package dedup

import (
	"sort"

	"github.com/m3uforge/m3uforge/internal/channel"
	"github.com/m3uforge/m3uforge/internal/normalize"
)

// Deduplicator folds an ordered sequence of raw channels into a set of
// unique channels. Identity is checked in order: exact normalized-URL
// match first, then normalized-name match when the groups agree or one
// side is still ungrouped.
type Deduplicator struct {
	namer *normalize.Namer
}

// New returns a deduplicator using the given namer for name keys. A nil
// namer uses the default tag set.
func New(namer *normalize.Namer) *Deduplicator {
	if namer == nil {
		namer = normalize.NewNamer(nil)
	}
	return &Deduplicator{namer: namer}
}

type cluster struct {
	members []*channel.Channel
}

// Collapse folds duplicates and returns the resulting set, ordered by
// first appearance of each cluster. The survivor of a cluster is chosen
// by a strict total order over the original records (enrichment score,
// then source order), so permuting records within a cluster cannot
// change the outcome.
func (d *Deduplicator) Collapse(in []*channel.Channel) *channel.Set {
	byURL := make(map[string]*cluster, len(in))
	byName := make(map[string]*cluster, len(in))
	var ordered []*cluster

	for _, ch := range in {
		urlKey := normalize.URL(ch.URL)
		nameKey := d.namer.Key(ch.Name)

		cl := byURL[urlKey]
		// Names made of nothing but stripped tags normalize to the
		// empty key; those never cluster by name.
		if cl == nil && nameKey != "" {
			if cand, ok := byName[nameKey]; ok && cand.accepts(ch) {
				cl = cand
			}
		}
		if cl == nil {
			cl = &cluster{}
			ordered = append(ordered, cl)
		}
		cl.members = append(cl.members, ch)

		// Index every URL and name spelling seen in the cluster so
		// later records still fold into it.
		if _, ok := byURL[urlKey]; !ok {
			byURL[urlKey] = cl
		}
		if _, ok := byName[nameKey]; !ok && nameKey != "" {
			byName[nameKey] = cl
		}
	}

	set := channel.NewSet(len(ordered))
	for _, cl := range ordered {
		set.Append(collapseCluster(cl.members))
	}
	return set
}

// Merged returns how many records were folded away by Collapse given
// the input and output sizes.
func Merged(in []*channel.Channel, out *channel.Set) int {
	return len(in) - out.Len()
}

// accepts reports whether a name-key match counts as a duplicate of
// this cluster: groups equal with some member, or either side still
// carries the default group.
func (cl *cluster) accepts(ch *channel.Channel) bool {
	for _, m := range cl.members {
		if m.Group == ch.Group || m.HasDefaultGroup() || ch.HasDefaultGroup() {
			return true
		}
	}
	return false
}

// collapseCluster sorts members by priority and folds them into one
// survivor. The losers' populated fields fill gaps in the survivor;
// on conflict the higher-priority value is kept.
func collapseCluster(members []*channel.Channel) *channel.Channel {
	sorted := make([]*channel.Channel, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := score(sorted[i]), score(sorted[j])
		if si != sj {
			return si > sj
		}
		return sorted[i].SourceOrder < sorted[j].SourceOrder
	})

	out := sorted[0].Clone()
	for _, m := range sorted[1:] {
		if out.Logo == "" && m.Logo != "" {
			out.Logo = m.Logo
		}
		if out.EPGID == "" && m.EPGID != "" {
			out.EPGID = m.EPGID
		}
		if out.HasDefaultGroup() && !m.HasDefaultGroup() {
			out.Group = m.Group
		}
		for k, v := range m.Attrs {
			if _, ok := out.Attrs[k]; !ok && v != "" {
				out.Attrs[k] = v
			}
		}
		if m.SourceOrder < out.SourceOrder {
			out.SourceOrder = m.SourceOrder
		}
	}
	return out
}

// score counts populated optional fields; enrichment beats position.
func score(c *channel.Channel) int {
	s := 0
	if c.Logo != "" {
		s++
	}
	if c.EPGID != "" {
		s++
	}
	if !c.HasDefaultGroup() {
		s++
	}
	return s
}
