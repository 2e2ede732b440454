package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/xoroz/yt-transcript/internal/core"
)

const tableExcerptLen = 120

// TableFormatter renders results as an ASCII table with a short excerpt of
// the transcript.
type TableFormatter struct{}

// FormatResult renders a resolved transcript as a table.
func (f *TableFormatter) FormatResult(result *core.Result) (string, error) {
	if result == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Field", "Value"})

	t.AppendRow(table.Row{"Video ID", result.VideoID})
	t.AppendRow(table.Row{"Source", sourceLabel(result)})
	t.AppendRow(table.Row{"Length", fmt.Sprintf("%d chars", len(result.Text))})
	t.AppendRow(table.Row{"Excerpt", excerpt(result.Text)})

	return t.Render(), nil
}

func sourceLabel(result *core.Result) string {
	if result.Cached {
		return fmt.Sprintf("cache (%s)", result.Provenance.Source)
	}
	return string(core.SourceUpstream)
}

func excerpt(text string) string {
	text = NormalizeText(text)
	if len(text) <= tableExcerptLen {
		return text
	}
	return text[:tableExcerptLen] + "..."
}
