// SPDX-License-Identifier: MIT

// Package epg builds the EPG channel index and matches playlist
// channels against it.
package epg

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// maxXMLSize bounds XMLTV input; guide dumps beyond this are truncated
// rather than exhausting memory.
const maxXMLSize = 50 * 1024 * 1024

// TV is the root element of an XMLTV document, reduced to the channel
// index this pipeline needs. Programme data is ignored.
type TV struct {
	XMLName  xml.Name  `xml:"tv"`
	Channels []Channel `xml:"channel"`
}

// Channel is one XMLTV channel element.
type Channel struct {
	ID           string   `xml:"id,attr"`
	DisplayNames []string `xml:"display-name"`
	Icon         *Icon    `xml:"icon"`
}

// Icon is an XMLTV channel icon.
type Icon struct {
	Src string `xml:"src,attr"`
}

var gzipMagic = []byte{0x1f, 0x8b}

// ParseXMLTV decodes the channel elements of an XMLTV document.
// Gzip-compressed payloads are detected by magic bytes and
// decompressed transparently. Entity expansion is disabled.
func ParseXMLTV(r io.Reader) ([]Channel, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read xmltv: %w", err)
	}
	if bytes.Equal(head, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gunzip xmltv: %w", err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	} else {
		r = br
	}

	dec := xml.NewDecoder(io.LimitReader(r, maxXMLSize))
	dec.Strict = true
	dec.Entity = map[string]string{}

	var doc TV
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode xmltv: %w", err)
	}
	return doc.Channels, nil
}
