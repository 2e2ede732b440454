package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xoroz/yt-transcript/internal/core"
)

func sampleResult() *core.Result {
	return &core.Result{
		VideoID: "dQw4w9WgXcQ",
		Text:    "never  gonna\n give\tyou up",
		Cached:  true,
		Provenance: core.Provenance{
			Source: core.SourceCache,
		},
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "collapses spaces", input: "a  b   c", want: "a b c"},
		{name: "mixed whitespace", input: "a\tb\nc\r\nd", want: "a b c d"},
		{name: "trims ends", input: "  hello  ", want: "hello"},
		{name: "empty", input: "", want: ""},
		{name: "only whitespace", input: " \n\t ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizeText(tt.input))
		})
	}
}

func TestHTMLDocumentEscapes(t *testing.T) {
	doc := HTMLDocument("abc<script>", "a & b <i>c</i>")
	require.Contains(t, doc, "abc&lt;script&gt;")
	require.Contains(t, doc, "a &amp; b &lt;i&gt;c&lt;/i&gt;")
	require.NotContains(t, doc, "<script>alert")
	require.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatTable},
		{input: "table", want: FormatTable},
		{input: "JSON", want: FormatJSON},
		{input: " text ", want: FormatText},
		{input: "html", want: FormatHTML},
		{input: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("input "+tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFormatters(t *testing.T) {
	result := sampleResult()

	t.Run("text", func(t *testing.T) {
		out, err := (&TextFormatter{}).FormatResult(result)
		require.NoError(t, err)
		require.Equal(t, "never gonna give you up", out)
	})

	t.Run("json", func(t *testing.T) {
		out, err := (&JSONFormatter{Indent: true}).FormatResult(result)
		require.NoError(t, err)
		require.Contains(t, out, `"video_id": "dQw4w9WgXcQ"`)
		require.Contains(t, out, `"cached": true`)
	})

	t.Run("table", func(t *testing.T) {
		out, err := (&TableFormatter{}).FormatResult(result)
		require.NoError(t, err)
		require.Contains(t, out, "dQw4w9WgXcQ")
		require.Contains(t, out, "cache")
	})

	t.Run("html", func(t *testing.T) {
		out, err := (&HTMLFormatter{}).FormatResult(result)
		require.NoError(t, err)
		require.Contains(t, out, "<title>Transcript dQw4w9WgXcQ</title>")
	})

	t.Run("nil result", func(t *testing.T) {
		for _, f := range []Formatter{&TextFormatter{}, &JSONFormatter{}, &TableFormatter{}, &HTMLFormatter{}} {
			out, err := f.FormatResult(nil)
			require.NoError(t, err)
			require.Empty(t, out)
		}
	})
}
