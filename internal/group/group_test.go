// SPDX-License-Identifier: MIT
package group

import (
	"testing"

	"github.com/m3uforge/m3uforge/internal/channel"
)

func setOf(chs ...*channel.Channel) *channel.Set {
	s := channel.NewSet(len(chs))
	for _, ch := range chs {
		s.Append(ch)
	}
	return s
}

func TestDetectTokens(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"BBC One HD", "UK"},
		{"ITV 2", "UK"},
		{"United Kingdom News", "UK"},
		{"USA Network", "US"},
		{"US Open Coverage", "US"},
		{"Canal France 24", "FR"},
		{"Deutschland Heute", "DE"},
		{"RTL Croatia", "HR"},
		{"Local Access 12", FallbackGroup},
		{"Business Channel", FallbackGroup},
	}
	g := New(nil)
	for _, tt := range tests {
		ch := channel.New(tt.name, "http://h/s")
		if got := g.detect(ch); got != tt.want {
			t.Errorf("detect(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestTokenNeedsWordBoundary(t *testing.T) {
	g := New(nil)
	// "us" inside a word must not trigger the US rule.
	ch := channel.New("Museum TV", "http://h/s")
	if got := g.detect(ch); got != FallbackGroup {
		t.Errorf("detect(%q) = %q, want fallback", ch.Name, got)
	}
}

func TestLongestTokenWins(t *testing.T) {
	g := New([]Rule{
		{"sport", "Sports"},
		{"sport news", "News"},
	})
	ch := channel.New("Euro Sport News", "http://h/s")
	if got := g.detect(ch); got != "News" {
		t.Errorf("detect = %q, want longer token's group", got)
	}
}

func TestGroupTitleAttrTakesPrecedence(t *testing.T) {
	ch := channel.New("BBC One", "http://h/s")
	ch.Attrs.Set(channel.AttrGroupTitle, "Documentaries")
	if got := New(nil).detect(ch); got != "Documentaries" {
		t.Errorf("detect = %q, want verbatim group-title", got)
	}
}

func TestApplyIsTotal(t *testing.T) {
	set := setOf(
		channel.New("BBC One", "http://h/1"),
		channel.New("Mystery Stream", "http://h/2"),
		channel.New("USA Today TV", "http://h/3"),
	)
	labeled := New(nil).Apply(set)
	if labeled != 3 {
		t.Fatalf("labeled = %d, want 3", labeled)
	}
	for _, ch := range set.Items() {
		if ch.HasDefaultGroup() {
			t.Errorf("%q still ungrouped after Apply", ch.Name)
		}
	}
}

func TestApplyNeverDowngrades(t *testing.T) {
	grouped := channel.New("BBC One", "http://h/1")
	grouped.Group = "Premium"
	set := setOf(grouped)

	g := New(nil)
	if labeled := g.Apply(set); labeled != 0 {
		t.Fatalf("labeled = %d, want 0", labeled)
	}
	if grouped.Group != "Premium" {
		t.Errorf("Group = %q, existing group was overwritten", grouped.Group)
	}

	// A second pass over a fully grouped set is a no-op.
	fresh := channel.New("Mystery Stream", "http://h/2")
	set2 := setOf(fresh)
	g.Apply(set2)
	before := fresh.Group
	if labeled := g.Apply(set2); labeled != 0 {
		t.Errorf("second pass labeled %d channels", labeled)
	}
	if fresh.Group != before {
		t.Errorf("second pass changed group %q -> %q", before, fresh.Group)
	}
}

func TestCustomRules(t *testing.T) {
	g := New([]Rule{{"novosti", "RS"}})
	ch := channel.New("Novosti 24", "http://h/s")
	if got := g.detect(ch); got != "RS" {
		t.Errorf("detect = %q, want %q", got, "RS")
	}
	// Defaults are replaced, not merged.
	bbc := channel.New("BBC One", "http://h/s")
	if got := g.detect(bbc); got != FallbackGroup {
		t.Errorf("detect = %q, want fallback with custom rules", got)
	}
}
