package videoid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromURL(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "WatchURL", input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "WatchURLExtraParams", input: "https://www.youtube.com/watch?t=42&v=dQw4w9WgXcQ&list=PL1", want: "dQw4w9WgXcQ"},
		{name: "ShortLink", input: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "ShortLinkWithQuery", input: "https://youtu.be/dQw4w9WgXcQ?si=abc", want: "dQw4w9WgXcQ"},
		{name: "ShortsPath", input: "https://www.youtube.com/shorts/abc123xyz_-", want: "abc123xyz_-"},
		{name: "EmbedPath", input: "https://www.youtube.com/embed/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "LivePath", input: "https://www.youtube.com/live/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "BareID", input: "dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "Whitespace", input: "  https://youtu.be/dQw4w9WgXcQ  ", want: "dQw4w9WgXcQ"},
		{name: "Empty", input: "", wantErr: true},
		{name: "NoID", input: "https://www.youtube.com/feed/subscriptions", wantErr: true},
		{name: "HomePage", input: "https://www.youtube.com", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromURL(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrNoVideoID)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestResolvePrefersExplicitID(t *testing.T) {
	got, err := Resolve("explicit-id", "https://youtu.be/other-id")
	require.NoError(t, err)
	require.Equal(t, "explicit-id", got)

	got, err = Resolve("", "https://youtu.be/other-id")
	require.NoError(t, err)
	require.Equal(t, "other-id", got)

	_, err = Resolve("", "")
	require.ErrorIs(t, err, ErrNoVideoID)
}
