// SPDX-License-Identifier: MIT

// Package group assigns country/category groups to ungrouped channels.
package group

import (
	"regexp"
	"sort"
	"strings"

	"github.com/m3uforge/m3uforge/internal/channel"
)

// FallbackGroup is assigned when no heuristic matches. The grouper is
// total: after it runs, every channel carries a non-default group.
const FallbackGroup = "Other"

// Rule maps a detection token to a group label.
type Rule struct {
	Token string
	Group string
}

// DefaultRules is the curated country token table. Longer tokens are
// matched first, so "United Kingdom" wins over "UK" and both win over
// shorter generic tokens.
var DefaultRules = []Rule{
	{"united states", "US"}, {"usa", "US"}, {"american", "US"}, {"us", "US"},
	{"united kingdom", "UK"}, {"british", "UK"}, {"bbc", "UK"}, {"itv", "UK"}, {"uk", "UK"},
	{"canada", "CA"}, {"canadian", "CA"},
	{"germany", "DE"}, {"german", "DE"}, {"deutschland", "DE"},
	{"france", "FR"}, {"french", "FR"},
	{"spain", "ES"}, {"spanish", "ES"}, {"espana", "ES"},
	{"italy", "IT"}, {"italian", "IT"}, {"italia", "IT"},
	{"brazil", "BR"}, {"brasil", "BR"},
	{"mexico", "MX"}, {"mexican", "MX"},
	{"india", "IN"}, {"indian", "IN"},
	{"australia", "AU"}, {"aussie", "AU"},
	{"netherlands", "NL"}, {"dutch", "NL"}, {"holland", "NL"},
	{"turkey", "TR"}, {"turkish", "TR"},
	{"argentina", "AR"},
	{"russia", "RU"}, {"russian", "RU"},
	{"croatia", "HR"}, {"hrvatska", "HR"},
}

type compiledRule struct {
	re    *regexp.Regexp
	group string
}

// Grouper applies the first-match-wins heuristic chain:
// group-title attribute, then token table, then FallbackGroup.
type Grouper struct {
	rules []compiledRule
}

// New compiles the token table, ordered longest token first. Rules of
// equal length keep their given order. Empty rules fall back to
// DefaultRules.
func New(rules []Rule) *Grouper {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Token) > len(sorted[j].Token)
	})

	g := &Grouper{rules: make([]compiledRule, 0, len(sorted))}
	for _, r := range sorted {
		tok := strings.ToLower(strings.TrimSpace(r.Token))
		if tok == "" {
			continue
		}
		g.rules = append(g.rules, compiledRule{
			re:    regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(tok) + `\b`),
			group: r.Group,
		})
	}
	return g
}

// Apply groups every channel still carrying the default group and
// returns how many channels it labeled. Channels grouped by an earlier
// stage or by the source playlist are never downgraded, which also
// makes a rerun on a fully grouped set a no-op.
func (g *Grouper) Apply(set *channel.Set) int {
	labeled := 0
	for _, ch := range set.Items() {
		if !ch.HasDefaultGroup() {
			continue
		}
		ch.Group = g.detect(ch)
		labeled++
	}
	return labeled
}

func (g *Grouper) detect(ch *channel.Channel) string {
	if gt := strings.TrimSpace(ch.Attrs.Get(channel.AttrGroupTitle)); gt != "" {
		return gt
	}
	for _, r := range g.rules {
		if r.re.MatchString(ch.Name) {
			return r.group
		}
	}
	return FallbackGroup
}
