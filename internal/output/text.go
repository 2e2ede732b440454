// Package output formats resolved transcripts for the API surfaces and the
// CLI: plain text, a standalone HTML document, JSON, and a summary table.
package output

import "strings"

// NormalizeText collapses all runs of whitespace in s to single spaces and
// trims the ends, producing one flat line of text.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
