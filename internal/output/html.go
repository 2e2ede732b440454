package output

import (
	"fmt"
	"html"
)

// HTMLDocument wraps a transcript in a minimal standalone HTML page with
// the text escaped for safe embedding.
func HTMLDocument(videoID, text string) string {
	id := html.EscapeString(videoID)
	body := html.EscapeString(NormalizeText(text))
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Transcript %s</title>
</head>
<body>
<h1>Transcript for %s</h1>
<p>%s</p>
</body>
</html>
`, id, id, body)
}
