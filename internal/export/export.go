// SPDX-License-Identifier: MIT

// Package export serializes a finished channel set into the supported
// output formats and commits them atomically.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/m3uforge/m3uforge/internal/channel"
	"github.com/m3uforge/m3uforge/internal/playlist"
)

// Format identifies an output format.
type Format string

const (
	FormatM3U    Format = "m3u"
	FormatJSON   Format = "json"
	FormatEditor Format = "editor"
)

// FileNames maps each format to its output file name.
var FileNames = map[Format]string{
	FormatM3U:    "final.m3u",
	FormatJSON:   "channels.json",
	FormatEditor: "editor.txt",
}

// record is the structured form of one channel.
type record struct {
	Name  string            `json:"name"`
	URL   string            `json:"url"`
	Group string            `json:"group"`
	Logo  string            `json:"logo,omitempty"`
	EPGID string            `json:"epg_id,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// M3U renders the playlist format. Exporters are pure functions of the
// set and never mutate it.
func M3U(set *channel.Set) ([]byte, error) {
	var buf bytes.Buffer
	if err := playlist.WriteM3U(&buf, set.Items()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// JSON renders the structured record list.
func JSON(set *channel.Set) ([]byte, error) {
	records := make([]record, 0, set.Len())
	for _, ch := range set.Items() {
		records = append(records, record{
			Name:  ch.Name,
			URL:   ch.URL,
			Group: ch.Group,
			Logo:  ch.Logo,
			EPGID: ch.EPGID,
			Attrs: ch.Attrs,
		})
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Editor renders the human-editable text form: one block per channel
// with labeled fields, blocks separated by a blank line.
func Editor(set *channel.Set) ([]byte, error) {
	var buf bytes.Buffer
	field := func(label, value string) {
		if value == "" {
			// No trailing space on empty fields; the file is meant to
			// be hand-edited and diffed.
			fmt.Fprintf(&buf, "%s:\n", label)
			return
		}
		fmt.Fprintf(&buf, "%s: %s\n", label, value)
	}
	for i, ch := range set.Items() {
		if i > 0 {
			buf.WriteByte('\n')
		}
		field("name", ch.Name)
		field("group", ch.Group)
		field("url", ch.URL)
		field("logo", ch.Logo)
		field("epg", ch.EPGID)
	}
	return buf.Bytes(), nil
}

var renderers = map[Format]func(*channel.Set) ([]byte, error){
	FormatM3U:    M3U,
	FormatJSON:   JSON,
	FormatEditor: Editor,
}

// Render runs every exporter over the finished set. Exporters only
// read, so they run concurrently; any failure aborts the whole render
// so nothing gets committed.
func Render(ctx context.Context, set *channel.Set) (map[Format][]byte, error) {
	out := make(map[Format][]byte, len(renderers))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	for format, render := range renderers {
		g.Go(func() error {
			data, err := render(set)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			out[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
