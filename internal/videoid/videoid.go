// Package videoid extracts YouTube video identifiers from the locator forms
// callers are likely to paste: watch URLs, youtu.be short links, shorts and
// embed paths, or a bare identifier.
package videoid

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrNoVideoID indicates the locator could not be resolved to a video id.
var ErrNoVideoID = errors.New("could not extract video id")

var bareIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,64}$`)

// Resolve returns the video id for a request, preferring an explicit id over
// a locator URL. The returned id is opaque; no upstream validation happens
// here.
func Resolve(videoID, rawURL string) (string, error) {
	if id := strings.TrimSpace(videoID); id != "" {
		return id, nil
	}
	return FromURL(rawURL)
}

// FromURL extracts the video id from a YouTube locator string.
func FromURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", ErrNoVideoID
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return "", ErrNoVideoID
	}

	// Short links carry the id as the first path segment.
	if strings.Contains(parsed.Host, "youtu.be") {
		if id := firstSegment(parsed.Path); id != "" {
			return id, nil
		}
	}

	if id := parsed.Query().Get("v"); id != "" {
		return id, nil
	}

	segments := splitPath(parsed.Path)
	for i, segment := range segments {
		if (segment == "shorts" || segment == "embed" || segment == "live") && i+1 < len(segments) {
			return segments[i+1], nil
		}
	}

	// A bare id pasted without any URL structure.
	if parsed.Host == "" && !strings.Contains(value, "/") && bareIDPattern.MatchString(value) {
		return value, nil
	}

	return "", ErrNoVideoID
}

func firstSegment(path string) string {
	segments := splitPath(path)
	if len(segments) == 0 {
		return ""
	}
	return segments[0]
}

func splitPath(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}
