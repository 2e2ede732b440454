// Package hotcache provides an optional in-front cache tier for transcripts.
// The durable store remains the source of truth; the hot tier only shortens
// the path for recently served videos and is always fail-open.
package hotcache

import "context"

// Cache is the hot-tier contract. Implementations must treat errors as
// advisory: a failing hot tier never blocks resolution.
type Cache interface {
	// Get returns the cached text and whether it was present.
	Get(ctx context.Context, videoID string) (string, bool, error)
	// Set stores text under videoID, subject to the tier's TTL policy.
	Set(ctx context.Context, videoID, text string) error
	Close() error
}

// Disabled is a no-op Cache used when no hot tier is configured.
type Disabled struct{}

func (Disabled) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (Disabled) Set(context.Context, string, string) error         { return nil }
func (Disabled) Close() error                                      { return nil }
