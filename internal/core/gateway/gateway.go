// Package gateway implements the transcript resolution protocol: durable
// cache lookup first, and on a miss a throttled upstream fetch whose result
// is written back to the cache and mirrored to the artifact sink.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/xoroz/yt-transcript/internal/core"
	"github.com/xoroz/yt-transcript/internal/core/gate"
	"github.com/xoroz/yt-transcript/internal/core/hotcache"
	"github.com/xoroz/yt-transcript/internal/metrics"
)

// ErrMissingVideoID is returned when a request carries no usable video id.
var ErrMissingVideoID = errors.New("video id is required")

// TranscriptStore is the durable cache the gateway reads and writes.
type TranscriptStore interface {
	GetTranscript(ctx context.Context, videoID string) (*core.Transcript, error)
	PutTranscript(ctx context.Context, videoID string, text string) error
}

// Fetcher retrieves a transcript from upstream.
type Fetcher interface {
	FetchTranscript(ctx context.Context, videoID string, languages []string) (string, error)
}

// Throttle grants permits for upstream calls.
type Throttle interface {
	Acquire(ctx context.Context) (*gate.Permit, error)
}

// ArtifactSink receives a best-effort copy of every resolved transcript.
type ArtifactSink interface {
	Write(videoID, text string)
}

// Gateway resolves transcript requests. Concurrent requests for the same
// video id on the miss path are collapsed into a single upstream fetch.
type Gateway struct {
	Store     TranscriptStore
	Hot       hotcache.Cache
	Upstream  Fetcher
	Gate      Throttle
	Artifacts ArtifactSink
	Logger    *zap.Logger

	// Clock reports the current time; overridable for tests.
	Clock func() time.Time

	group singleflight.Group
}

// New creates a gateway over the given collaborators. Hot and Artifacts may
// be nil when those tiers are disabled.
func New(store TranscriptStore, upstream Fetcher, throttle Throttle, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		Store:    store,
		Hot:      hotcache.Disabled{},
		Upstream: upstream,
		Gate:     throttle,
		Logger:   logger,
	}
}

// Resolve runs the resolution protocol for req and returns the transcript
// with its provenance. Cache read failures degrade to a fresh fetch; cache
// write failures are logged and the fetched content is still returned.
func (g *Gateway) Resolve(ctx context.Context, req core.Request) (*core.Result, error) {
	if g == nil {
		return nil, fmt.Errorf("gateway is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	videoID := strings.TrimSpace(req.VideoID)
	if videoID == "" {
		return nil, ErrMissingVideoID
	}

	requestID := uuid.New().String()
	requestedAt := g.now()

	if !req.NoCache {
		if result := g.lookupCached(ctx, videoID, requestID, requestedAt); result != nil {
			metrics.RecordResolution(string(result.Provenance.Source))
			g.notifyArtifact(videoID, result.Text)
			return result, nil
		}
	}

	text, err := g.fetchShared(ctx, videoID, req.Languages)
	if err != nil {
		metrics.RecordResolution("failed")
		return nil, err
	}

	metrics.RecordResolution(string(core.SourceUpstream))
	g.notifyArtifact(videoID, text)

	return &core.Result{
		VideoID: videoID,
		Text:    text,
		Cached:  false,
		Provenance: core.Provenance{
			RequestID:   requestID,
			RequestedAt: requestedAt,
			ResolvedAt:  g.now(),
			Source:      core.SourceUpstream,
		},
	}, nil
}

// lookupCached checks the hot tier then the durable store. Both tiers fail
// open: an error counts as a miss.
func (g *Gateway) lookupCached(ctx context.Context, videoID, requestID string, requestedAt time.Time) *core.Result {
	if g.Hot != nil {
		text, ok, err := g.Hot.Get(ctx, videoID)
		if err != nil {
			g.Logger.Warn("hot cache read failed, falling through",
				zap.String("video_id", videoID),
				zap.Error(err))
		} else if ok {
			return g.cachedResult(videoID, text, core.SourceHotCache, requestID, requestedAt)
		}
	}

	if g.Store == nil {
		return nil
	}

	entry, err := g.Store.GetTranscript(ctx, videoID)
	if err != nil {
		g.Logger.Warn("cache read failed, treating as miss",
			zap.String("video_id", videoID),
			zap.Error(err))
		metrics.RecordOperationError("cache_read", "storage_error")
		return nil
	}
	if entry == nil {
		return nil
	}

	g.setHot(ctx, videoID, entry.Text)
	return g.cachedResult(videoID, entry.Text, core.SourceCache, requestID, requestedAt)
}

func (g *Gateway) cachedResult(videoID, text string, source core.Source, requestID string, requestedAt time.Time) *core.Result {
	return &core.Result{
		VideoID: videoID,
		Text:    text,
		Cached:  true,
		Provenance: core.Provenance{
			RequestID:   requestID,
			RequestedAt: requestedAt,
			ResolvedAt:  g.now(),
			Source:      source,
		},
	}
}

// fetchShared collapses concurrent fetches for the same video id into one
// upstream call. The shared call runs detached from any single caller's
// context so a cancelled request does not abort the fetch for the others,
// and the cache still gets populated.
func (g *Gateway) fetchShared(ctx context.Context, videoID string, languages []string) (string, error) {
	fetchCtx := context.WithoutCancel(ctx)

	ch := g.group.DoChan(videoID, func() (interface{}, error) {
		return g.fetchAndStore(fetchCtx, videoID, languages)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (g *Gateway) fetchAndStore(ctx context.Context, videoID string, languages []string) (string, error) {
	if g.Upstream == nil {
		return "", fmt.Errorf("no upstream fetcher configured")
	}

	if len(languages) == 0 {
		languages = core.DefaultLanguages
	}

	var permit *gate.Permit
	if g.Gate != nil {
		waitStart := g.now()
		p, err := g.Gate.Acquire(ctx)
		if err != nil {
			return "", fmt.Errorf("acquire fetch permit: %w", err)
		}
		permit = p
		metrics.RecordGateWait(g.now().Sub(waitStart))
	}

	text, err := g.Upstream.FetchTranscript(ctx, videoID, languages)
	if permit != nil {
		permit.Release()
	}
	if err != nil {
		return "", fmt.Errorf("fetch transcript: %w", err)
	}

	if g.Store != nil {
		if err := g.Store.PutTranscript(ctx, videoID, text); err != nil {
			g.Logger.Error("cache write failed, returning uncached content",
				zap.String("video_id", videoID),
				zap.Error(err))
			metrics.RecordOperationError("cache_write", "storage_error")
		}
	}
	g.setHot(ctx, videoID, text)

	return text, nil
}

func (g *Gateway) setHot(ctx context.Context, videoID, text string) {
	if g.Hot == nil {
		return
	}
	if err := g.Hot.Set(ctx, videoID, text); err != nil {
		g.Logger.Warn("hot cache write failed",
			zap.String("video_id", videoID),
			zap.Error(err))
	}
}

func (g *Gateway) notifyArtifact(videoID, text string) {
	if g.Artifacts == nil {
		return
	}
	go g.Artifacts.Write(videoID, text)
}

func (g *Gateway) now() time.Time {
	if g != nil && g.Clock != nil {
		return g.Clock()
	}
	return time.Now().UTC()
}
