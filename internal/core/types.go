package core

import "time"

// Source identifies where a transcript resolution came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceHotCache Source = "hotcache"
	SourceUpstream Source = "upstream"
)

// DefaultLanguages is the language preference order used when a request
// does not specify one.
var DefaultLanguages = []string{"en", "en-US", "it"}

// Transcript is a durable cache entry for one video.
type Transcript struct {
	VideoID   string    `json:"video_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Request describes a single transcript resolution. VideoID must already be
// resolved; locator parsing happens at the edge (see internal/videoid).
type Request struct {
	VideoID   string   `json:"video_id"`
	Languages []string `json:"languages,omitempty"`
	NoCache   bool     `json:"no_cache,omitempty"`
}

// Provenance captures metadata about how a transcript was resolved.
type Provenance struct {
	RequestID   string    `json:"request_id"`
	RequestedAt time.Time `json:"requested_at"`
	ResolvedAt  time.Time `json:"resolved_at"`
	Source      Source    `json:"source"`
}

// Result is the outcome of a transcript resolution.
type Result struct {
	VideoID    string     `json:"video_id"`
	Text       string     `json:"text"`
	Cached     bool       `json:"cached"`
	Provenance Provenance `json:"provenance"`
}
