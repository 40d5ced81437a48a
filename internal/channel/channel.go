// SPDX-License-Identifier: MIT

// Package channel defines the playlist channel model shared by all
// pipeline stages.
package channel

import "strings"

// DefaultGroup is the group assigned to channels until the grouper runs.
const DefaultGroup = "Uncategorized"

// Well-known extended attribute keys. Attribute keys are stored
// lower-cased; unknown keys are preserved verbatim for re-export.
const (
	AttrTvgID      = "tvg-id"
	AttrTvgName    = "tvg-name"
	AttrTvgLogo    = "tvg-logo"
	AttrGroupTitle = "group-title"
)

// Attrs holds the extended attributes of an EXTINF line. Keys are
// case-insensitive and canonicalized to lower case on insertion.
type Attrs map[string]string

// Set stores value under the lower-cased key. A later Set for the same
// key overwrites the earlier value.
func (a Attrs) Set(key, value string) {
	a[strings.ToLower(key)] = value
}

// Get returns the value for the case-insensitive key.
func (a Attrs) Get(key string) string {
	return a[strings.ToLower(key)]
}

// Clone returns an independent copy of the attribute map.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Channel is one playlist entry. Display fields keep their original
// casing; normalized comparison keys are derived on demand and never
// stored back.
type Channel struct {
	Name  string
	URL   string
	Group string
	Logo  string
	EPGID string
	Attrs Attrs

	// SourceOrder records the original ingestion position so that
	// exports stay deterministic when every other field ties.
	SourceOrder int
}

// New returns a channel with the default group and an empty attribute map.
func New(name, url string) *Channel {
	return &Channel{
		Name:  name,
		URL:   url,
		Group: DefaultGroup,
		Attrs: Attrs{},
	}
}

// HasDefaultGroup reports whether the channel is still ungrouped.
func (c *Channel) HasDefaultGroup() bool {
	return c.Group == "" || c.Group == DefaultGroup
}

// Clone returns a deep copy of the channel.
func (c *Channel) Clone() *Channel {
	out := *c
	out.Attrs = c.Attrs.Clone()
	return &out
}
