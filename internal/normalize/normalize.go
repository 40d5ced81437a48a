// SPDX-License-Identifier: MIT

// Package normalize derives canonical comparison keys from channel
// display fields. Keys are used for deduplication and enrichment
// lookups only; the display values themselves are never rewritten.
package normalize

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	unorm "golang.org/x/text/unicode/norm"
)

// DefaultTags are the quality/region suffixes stripped from names
// before comparison. Callers may supply their own set via NewNamer.
var DefaultTags = []string{"hd", "fhd", "uhd", "sd", "4k", "8k", "hevc", "h265", "raw"}

var (
	spaceRe = regexp.MustCompile(`\s+`)
	punctRe = regexp.MustCompile(`[.,:;!?'"|/\\_+\-]`)

	// NFD + strip combining marks + NFC recompose.
	deaccent = transform.Chain(unorm.NFD, runes.Remove(runes.In(unicode.Mn)), unorm.NFC)
)

// Namer produces normalized name keys for a fixed tag pattern set.
// The zero value is not usable; construct with NewNamer.
type Namer struct {
	suffixRe  *regexp.Regexp
	bracketRe *regexp.Regexp
}

// NewNamer compiles the tag set into matching patterns. An empty set
// falls back to DefaultTags.
func NewNamer(tags []string) *Namer {
	if len(tags) == 0 {
		tags = DefaultTags
	}
	quoted := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
	}
	alt := strings.Join(quoted, "|")
	return &Namer{
		// Trailing bare tags, stripped repeatedly ("BBC One FHD HD").
		suffixRe: regexp.MustCompile(`\s+(` + alt + `)$`),
		// Bracketed tags or two-letter region codes anywhere in the
		// name: "(UK)", "[HD]", "(4K)".
		bracketRe: regexp.MustCompile(`[(\[](` + alt + `|[a-z]{2})[)\]]`),
	}
}

// Key returns the normalized comparison key for a display name. The
// function is pure: identical inputs always yield identical keys.
func (n *Namer) Key(name string) string {
	s, _, err := transform.String(deaccent, name)
	if err != nil {
		s = name
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = n.bracketRe.ReplaceAllString(s, " ")
	s = punctRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	// Strip trailing tags repeatedly until none remain.
	for {
		before := s
		s = n.suffixRe.ReplaceAllString(s, "")
		if s == before {
			break
		}
	}
	return strings.TrimSpace(s)
}

var defaultNamer = NewNamer(nil)

// Name returns the normalized name key using the default tag set.
func Name(name string) string {
	return defaultNamer.Key(name)
}

// URL returns the normalized URL key: query and fragment dropped,
// trailing slashes removed, scheme and host lower-cased. Path case is
// preserved since many stream servers treat paths case-sensitively.
func URL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		// Not an absolute URL; fall back to a textual key.
		if i := strings.IndexAny(raw, "?#"); i >= 0 {
			raw = raw[:i]
		}
		return strings.TrimRight(strings.ToLower(raw), "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	if u.RawPath != "" {
		u.RawPath = strings.TrimRight(u.RawPath, "/")
	}
	return u.String()
}
