// SPDX-License-Identifier: MIT
package playlist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3uforge/m3uforge/internal/channel"
)

const samplePlaylist = `#EXTM3U
#EXTINF:-1 tvg-id="bbc1.uk" tvg-logo="http://logos/bbc1.png" group-title="UK",BBC One
http://host/bbc1
#EXTINF:-1,CNN International
http://host/cnn
`

func TestParseBasic(t *testing.T) {
	res, err := Parse(strings.NewReader(samplePlaylist))
	require.NoError(t, err)
	require.Len(t, res.Channels, 2)
	require.Empty(t, res.Warnings)

	bbc := res.Channels[0]
	require.Equal(t, "BBC One", bbc.Name)
	require.Equal(t, "http://host/bbc1", bbc.URL)
	require.Equal(t, "UK", bbc.Group)
	require.Equal(t, "http://logos/bbc1.png", bbc.Logo)
	require.Equal(t, "bbc1.uk", bbc.EPGID)
	require.Equal(t, 0, bbc.SourceOrder)

	cnn := res.Channels[1]
	require.Equal(t, "CNN International", cnn.Name)
	require.Equal(t, channel.DefaultGroup, cnn.Group)
	require.Equal(t, 1, cnn.SourceOrder)
}

func TestParseCountInvariant(t *testing.T) {
	// Every #EXTINF line ends up either as a channel or as a warning.
	input := `#EXTM3U
#EXTINF:-1,Good One
http://host/good
#EXTINF:-1,Dangling Without URL
#EXTINF:-1,Another Good
http://host/good2
#EXTINF garbage line without colon
#EXTINF:-1,Trailing Dangler
`
	res, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	extinf := strings.Count(input, "#EXTINF")
	require.Equal(t, extinf, len(res.Channels)+len(res.Warnings))
	require.Len(t, res.Channels, 2)
	require.Len(t, res.Warnings, 3)
}

func TestParseWarningReasons(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason WarnReason
	}{
		{
			name:   "metadata without url",
			input:  "#EXTINF:-1,Orphan\n#EXTINF:-1,Next\nhttp://host/next\n",
			reason: ReasonMissingURL,
		},
		{
			name:   "metadata at eof",
			input:  "#EXTINF:-1,Orphan\n",
			reason: ReasonMissingURL,
		},
		{
			name:   "invalid metadata line",
			input:  "#EXTINF no colon\n",
			reason: ReasonInvalidMetadata,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			require.NotEmpty(t, res.Warnings)
			require.Equal(t, tt.reason, res.Warnings[0].Reason)
		})
	}
}

func TestParseDuplicateAttrLastWins(t *testing.T) {
	input := `#EXTINF:-1 tvg-id="first" tvg-id="second",Chan
http://host/c
`
	res, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Channels, 1)
	require.Equal(t, "second", res.Channels[0].EPGID)
}

func TestParseAttrKeysCaseInsensitive(t *testing.T) {
	input := `#EXTINF:-1 TVG-ID="x" Group-Title="News",Chan
http://host/c
`
	res, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Channels, 1)
	require.Equal(t, "x", res.Channels[0].Attrs.Get("tvg-id"))
	require.Equal(t, "News", res.Channels[0].Group)
}

func TestParseNameFallbackFromURL(t *testing.T) {
	input := "#EXTINF:-1,\nhttp://host/streams/Discovery%20Channel\n"
	res, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Channels, 1)
	require.Equal(t, "Discovery Channel", res.Channels[0].Name)
}

func TestParseSkipsCommentsAndBlanks(t *testing.T) {
	input := "#EXTM3U\n\n# a comment\n#EXTINF:-1,Chan\n\n# another\nhttp://host/c\n"
	res, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Channels, 1)
	require.Equal(t, "http://host/c", res.Channels[0].URL)
}

func TestWriteM3URoundTrip(t *testing.T) {
	ch := channel.New("BBC One", "http://host/bbc1")
	ch.Group = "UK"
	ch.Logo = "http://logos/bbc1.png"
	ch.EPGID = "bbc1.uk"
	ch.Attrs.Set("tvg-name", "BBC1")

	var b strings.Builder
	require.NoError(t, WriteM3U(&b, []*channel.Channel{ch}))
	out := b.String()
	require.True(t, strings.HasPrefix(out, "#EXTM3U\n"))
	require.Contains(t, out, `tvg-id="bbc1.uk"`)
	require.Contains(t, out, `tvg-logo="http://logos/bbc1.png"`)
	require.Contains(t, out, `group-title="UK"`)
	require.Contains(t, out, `tvg-name="BBC1"`)
	require.Contains(t, out, ",BBC One\n")

	res, err := Parse(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, res.Channels, 1)
	back := res.Channels[0]
	require.Equal(t, ch.Name, back.Name)
	require.Equal(t, ch.URL, back.URL)
	require.Equal(t, ch.Group, back.Group)
	require.Equal(t, ch.Logo, back.Logo)
	require.Equal(t, ch.EPGID, back.EPGID)
	require.Equal(t, "BBC1", back.Attrs.Get("tvg-name"))
}
