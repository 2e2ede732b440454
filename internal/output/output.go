package output

import (
	"fmt"
	"strings"

	"github.com/xoroz/yt-transcript/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatText  Format = "text"
	FormatHTML  Format = "html"
)

// Formatter renders a resolved transcript.
type Formatter interface {
	FormatResult(result *core.Result) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatText):
		return FormatText, nil
	case string(FormatHTML):
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatText:
		return &TextFormatter{}
	case FormatHTML:
		return &HTMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// TextFormatter renders just the normalized transcript text.
type TextFormatter struct{}

func (f *TextFormatter) FormatResult(result *core.Result) (string, error) {
	if result == nil {
		return "", nil
	}
	return NormalizeText(result.Text), nil
}

// HTMLFormatter renders the transcript as a standalone HTML document.
type HTMLFormatter struct{}

func (f *HTMLFormatter) FormatResult(result *core.Result) (string, error) {
	if result == nil {
		return "", nil
	}
	return HTMLDocument(result.VideoID, result.Text), nil
}
