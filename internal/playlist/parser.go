// SPDX-License-Identifier: MIT

// Package playlist parses and writes Extended M3U playlists.
package playlist

import (
	"bufio"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/m3uforge/m3uforge/internal/channel"
)

// WarnReason classifies why a playlist entry was skipped.
type WarnReason string

const (
	ReasonMissingURL      WarnReason = "missing_url"
	ReasonMissingName     WarnReason = "missing_name"
	ReasonInvalidMetadata WarnReason = "invalid_metadata"
)

// Warning describes one skipped entry. Parsing never fails on a single
// malformed entry; it skips and records.
type Warning struct {
	Line   int
	Reason WarnReason
	Text   string
}

// Result holds the channels and warnings of one parsed playlist.
// len(Channels) + len(Warnings) equals the number of #EXTINF lines in
// the input.
type Result struct {
	Channels []*channel.Channel
	Warnings []Warning
}

var attrRe = regexp.MustCompile(`([A-Za-z0-9][A-Za-z0-9\-]*)="([^"]*)"`)

type pendingEntry struct {
	line  int
	text  string
	name  string
	attrs channel.Attrs
}

// Parse scans one playlist. A metadata line introduces an entry; the
// next non-comment, non-blank line is that entry's URL. A metadata line
// with no URL before the next metadata line (or EOF) is discarded with
// a warning.
func Parse(r io.Reader) (*Result, error) {
	res := &Result{}
	var pending *pendingEntry
	order := 0

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#EXTINF"):
			if pending != nil {
				res.Warnings = append(res.Warnings, Warning{Line: pending.line, Reason: ReasonMissingURL, Text: pending.text})
				pending = nil
			}
			if !strings.HasPrefix(line, "#EXTINF:") {
				res.Warnings = append(res.Warnings, Warning{Line: lineNo, Reason: ReasonInvalidMetadata, Text: line})
				continue
			}
			pending = parseMetadata(line, lineNo)
		case strings.HasPrefix(line, "#"):
			// #EXTM3U header and any other directive or comment.
			continue
		default:
			if pending == nil {
				// URL with no preceding metadata line is not an entry.
				continue
			}
			ch, ok := buildChannel(pending, line, order)
			if !ok {
				res.Warnings = append(res.Warnings, Warning{Line: pending.line, Reason: ReasonMissingName, Text: pending.text})
				pending = nil
				continue
			}
			res.Channels = append(res.Channels, ch)
			order++
			pending = nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if pending != nil {
		res.Warnings = append(res.Warnings, Warning{Line: pending.line, Reason: ReasonMissingURL, Text: pending.text})
	}
	return res, nil
}

// parseMetadata splits an EXTINF line into attributes and display name.
// Attribute tokens are key="value" pairs; duplicate keys keep the last
// occurrence. The display name is whatever follows the attributes and
// the separating comma.
func parseMetadata(line string, lineNo int) *pendingEntry {
	body := strings.TrimPrefix(line, "#EXTINF:")
	attrs := channel.Attrs{}

	cut := 0
	for _, m := range attrRe.FindAllStringSubmatchIndex(body, -1) {
		attrs.Set(body[m[2]:m[3]], body[m[4]:m[5]])
		cut = m[1]
	}

	rest := body[cut:]
	name := ""
	if i := strings.Index(rest, ","); i >= 0 {
		name = strings.TrimSpace(rest[i+1:])
	}
	return &pendingEntry{line: lineNo, text: line, name: name, attrs: attrs}
}

func buildChannel(p *pendingEntry, rawURL string, order int) (*channel.Channel, bool) {
	name := p.name
	if name == "" {
		name = nameFromURL(rawURL)
	}
	if name == "" {
		return nil, false
	}

	ch := channel.New(name, rawURL)
	ch.Attrs = p.attrs
	ch.SourceOrder = order
	if g := p.attrs.Get(channel.AttrGroupTitle); strings.TrimSpace(g) != "" {
		ch.Group = g
	}
	ch.Logo = p.attrs.Get(channel.AttrTvgLogo)
	ch.EPGID = p.attrs.Get(channel.AttrTvgID)
	return ch, true
}

// nameFromURL falls back to the last path segment, percent-decoded.
func nameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	path := rawURL
	if err == nil && u.Path != "" {
		path = u.Path
	}
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	if dec, err := url.PathUnescape(path); err == nil {
		path = dec
	}
	return strings.TrimSpace(path)
}
