package youtube

import "strings"

// playerResponse mirrors the slice of YouTube's embedded player state the
// client needs. Unknown fields are ignored.
type playerResponse struct {
	Captions struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// timedText is the json3 caption payload: a flat event list where each
// event carries text segments.
type timedText struct {
	Events []timedEvent `json:"events"`
}

type timedEvent struct {
	Segs []timedSeg `json:"segs"`
}

type timedSeg struct {
	UTF8 string `json:"utf8"`
}

// PlainText flattens the events into a single space-joined string, dropping
// the bare newline markers json3 uses between caption lines.
func (t timedText) PlainText() string {
	var parts []string
	for _, ev := range t.Events {
		for _, seg := range ev.Segs {
			s := strings.TrimSpace(seg.UTF8)
			if s == "" {
				continue
			}
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
