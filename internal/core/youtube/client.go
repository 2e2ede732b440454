// Package youtube fetches transcripts from YouTube's public watch pages.
// It scrapes the embedded player response for caption tracks and downloads
// the selected track in the json3 timed-text format.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultBaseURL   = "https://www.youtube.com"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	playerResponseMarker = "ytInitialPlayerResponse"

	maxWatchPageBytes = 8 << 20
	maxTrackBytes     = 4 << 20
)

// Errors a caller may want to distinguish from plain transport failures.
var (
	ErrNoCaptions         = errors.New("video has no caption tracks")
	ErrNoMatchingLanguage = errors.New("no caption track matches requested languages")
)

// Client fetches transcripts over HTTP. The zero value is not usable; use
// NewClient.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
}

// Options configures a Client. ProxyURL, when set, routes all requests
// through the given HTTP proxy (credentials go in the URL userinfo).
type Options struct {
	ProxyURL  string
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// NewClient builds a transcript client from options, applying defaults for
// anything unset.
func NewClient(opts Options) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.ProxyURL != "" {
		proxy, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		HTTPClient: &http.Client{Transport: transport, Timeout: timeout},
		BaseURL:    strings.TrimRight(baseURL, "/"),
		UserAgent:  userAgent,
	}, nil
}

// FetchTranscript downloads the transcript for videoID in the first of
// languages that has a caption track. Returns the transcript as plain text
// with segments joined by single spaces.
func (c *Client) FetchTranscript(ctx context.Context, videoID string, languages []string) (string, error) {
	if c == nil || c.HTTPClient == nil {
		return "", fmt.Errorf("youtube client is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(videoID) == "" {
		return "", fmt.Errorf("video id is required")
	}

	player, err := c.fetchPlayerResponse(ctx, videoID)
	if err != nil {
		return "", err
	}

	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return "", fmt.Errorf("video %s: %w", videoID, ErrNoCaptions)
	}

	track, err := pickTrack(tracks, languages)
	if err != nil {
		return "", fmt.Errorf("video %s: %w", videoID, err)
	}

	text, err := c.fetchTrackText(ctx, track.BaseURL)
	if err != nil {
		return "", fmt.Errorf("fetch caption track for %s: %w", videoID, err)
	}
	return text, nil
}

func (c *Client) fetchPlayerResponse(ctx context.Context, videoID string) (*playerResponse, error) {
	watchURL := c.BaseURL + "/watch?v=" + url.QueryEscape(videoID)

	body, err := c.get(ctx, watchURL, maxWatchPageBytes)
	if err != nil {
		return nil, fmt.Errorf("fetch watch page for %s: %w", videoID, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse watch page for %s: %w", videoID, err)
	}

	var raw string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, playerResponseMarker)
		if idx < 0 {
			return true
		}
		rest := text[idx+len(playerResponseMarker):]
		eq := strings.Index(rest, "=")
		if eq < 0 {
			return true
		}
		raw = strings.TrimSpace(rest[eq+1:])
		return false
	})
	if raw == "" {
		return nil, fmt.Errorf("watch page for %s has no player response", videoID)
	}

	// The script continues past the JSON value; decode just the first one.
	var player playerResponse
	if err := json.NewDecoder(strings.NewReader(raw)).Decode(&player); err != nil {
		return nil, fmt.Errorf("decode player response for %s: %w", videoID, err)
	}
	return &player, nil
}

func (c *Client) fetchTrackText(ctx context.Context, trackURL string) (string, error) {
	u, err := url.Parse(trackURL)
	if err != nil {
		return "", fmt.Errorf("parse track url: %w", err)
	}
	if !u.IsAbs() {
		base, err := url.Parse(c.BaseURL)
		if err != nil {
			return "", fmt.Errorf("parse base url: %w", err)
		}
		u = base.ResolveReference(u)
	}
	q := u.Query()
	q.Set("fmt", "json3")
	u.RawQuery = q.Encode()

	body, err := c.get(ctx, u.String(), maxTrackBytes)
	if err != nil {
		return "", err
	}
	defer body.Close()

	var timed timedText
	if err := json.NewDecoder(body).Decode(&timed); err != nil {
		return "", fmt.Errorf("decode timed text: %w", err)
	}
	return timed.PlainText(), nil
}

func (c *Client) get(ctx context.Context, rawURL string, limit int64) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, limit), resp.Body}, nil
}

func pickTrack(tracks []captionTrack, languages []string) (captionTrack, error) {
	if len(languages) == 0 {
		return tracks[0], nil
	}

	for _, lang := range languages {
		for _, t := range tracks {
			if strings.EqualFold(t.LanguageCode, lang) {
				return t, nil
			}
		}
	}

	// Second pass: treat "en" as matching "en-US" and vice versa.
	for _, lang := range languages {
		base := baseLang(lang)
		for _, t := range tracks {
			if baseLang(t.LanguageCode) == base {
				return t, nil
			}
		}
	}

	return captionTrack{}, ErrNoMatchingLanguage
}

func baseLang(code string) string {
	code = strings.ToLower(code)
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		return code[:i]
	}
	return code
}
