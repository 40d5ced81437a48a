// SPDX-License-Identifier: MIT
package playlist

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/m3uforge/m3uforge/internal/channel"
)

// WriteM3U serializes channels as an Extended M3U playlist. The
// enriched fields populate tvg-id, tvg-logo and group-title; any other
// preserved attributes are re-emitted in sorted key order so output is
// byte-stable across runs.
func WriteM3U(w io.Writer, channels []*channel.Channel) error {
	buf := &bytes.Buffer{}
	buf.WriteString("#EXTM3U\n")
	for _, ch := range channels {
		buf.WriteString(fmt.Sprintf(
			`#EXTINF:-1 tvg-id=%q tvg-logo=%q group-title=%q`,
			ch.EPGID, ch.Logo, ch.Group,
		))
		for _, k := range extraAttrKeys(ch.Attrs) {
			buf.WriteString(fmt.Sprintf(` %s=%q`, k, ch.Attrs[k]))
		}
		buf.WriteString("," + ch.Name + "\n")
		buf.WriteString(ch.URL + "\n")
	}
	_, err := io.Copy(w, buf)
	return err
}

// extraAttrKeys returns the preserved attribute keys that are not
// already covered by an enriched field, sorted.
func extraAttrKeys(attrs channel.Attrs) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		switch k {
		case channel.AttrTvgID, channel.AttrTvgLogo, channel.AttrGroupTitle:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
