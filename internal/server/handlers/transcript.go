package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/xoroz/yt-transcript/internal/core"
	"github.com/xoroz/yt-transcript/internal/core/gateway"
	apperrors "github.com/xoroz/yt-transcript/internal/errors"
	"github.com/xoroz/yt-transcript/internal/metrics"
	"github.com/xoroz/yt-transcript/internal/output"
	"github.com/xoroz/yt-transcript/internal/server/middleware"
	"github.com/xoroz/yt-transcript/internal/videoid"
)

var (
	transcriptGateway *gateway.Gateway
	opsLogger         = zap.NewNop()
)

// SetTranscriptDeps injects the gateway and operations logger used by the
// transcript handlers.
func SetTranscriptDeps(gw *gateway.Gateway, ops *zap.Logger) {
	transcriptGateway = gw
	if ops != nil {
		opsLogger = ops
	}
}

// TranscriptRequest is the request body accepted by the transcript endpoints.
// Either url or video_id must be provided; video_id wins when both are set.
type TranscriptRequest struct {
	URL       string   `json:"url,omitempty"`
	VideoID   string   `json:"video_id,omitempty"`
	Languages []string `json:"languages,omitempty"`
	NoCache   bool     `json:"no_cache,omitempty"`
}

// TranscriptResponse is the JSON body returned by /transcript and
// /transcript/text.
type TranscriptResponse struct {
	VideoID string `json:"video_id"`
	Text    string `json:"text"`
	Cached  bool   `json:"cached"`
}

// TranscriptHandler resolves a transcript and returns it verbatim.
func TranscriptHandler(w http.ResponseWriter, r *http.Request) {
	result, ok := resolveTranscript(w, r)
	if !ok {
		return
	}
	respondJSON(w, TranscriptResponse{
		VideoID: result.VideoID,
		Text:    result.Text,
		Cached:  result.Cached,
	})
}

// TranscriptTextHandler resolves a transcript and returns it with all
// whitespace collapsed to single spaces.
func TranscriptTextHandler(w http.ResponseWriter, r *http.Request) {
	result, ok := resolveTranscript(w, r)
	if !ok {
		return
	}
	respondJSON(w, TranscriptResponse{
		VideoID: result.VideoID,
		Text:    output.NormalizeText(result.Text),
		Cached:  result.Cached,
	})
}

// TranscriptHTMLHandler resolves a transcript and returns it as a standalone
// HTML document.
func TranscriptHTMLHandler(w http.ResponseWriter, r *http.Request) {
	result, ok := resolveTranscript(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(output.HTMLDocument(result.VideoID, result.Text)))
}

// resolveTranscript runs the shared decode/resolve/audit flow. On failure it
// writes the error response and returns ok=false.
func resolveTranscript(w http.ResponseWriter, r *http.Request) (*core.Result, bool) {
	ctx := r.Context()
	clientIP := middleware.ClientIP(r)

	if transcriptGateway == nil {
		respondWithError(w, r, apperrors.NewInternalError("transcript gateway not initialized"))
		return nil, false
	}

	var req TranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logOpsFailure(clientIP, req, err)
		respondWithError(w, r, apperrors.WrapInvalidInput(ctx, err, "invalid request body"))
		return nil, false
	}

	vid, err := videoid.Resolve(req.VideoID, req.URL)
	if err != nil {
		logOpsFailure(clientIP, req, err)
		respondWithError(w, r, apperrors.WrapInvalidInput(ctx, err, "could not determine video id"))
		return nil, false
	}

	result, err := transcriptGateway.Resolve(ctx, core.Request{
		VideoID:   vid,
		Languages: req.Languages,
		NoCache:   req.NoCache,
	})
	if err != nil {
		logOpsFailure(clientIP, req, err)
		if errors.Is(err, gateway.ErrMissingVideoID) {
			respondWithError(w, r, apperrors.WrapInvalidInput(ctx, err, "video id is required"))
		} else {
			respondWithError(w, r, apperrors.WrapFetchFailed(ctx, err, "could not fetch transcript"))
		}
		return nil, false
	}

	metrics.RecordOperation("transcript", true)
	opsLogger.Info("transcript served",
		zap.String("ip", clientIP),
		zap.String("op", "transcript"),
		zap.String("video_id", result.VideoID),
		zap.String("video_url", req.URL),
		zap.Bool("cached", result.Cached),
		zap.Int("text_len", len(result.Text)),
	)

	return result, true
}

func logOpsFailure(clientIP string, req TranscriptRequest, err error) {
	metrics.RecordOperation("transcript", false)
	opsLogger.Info("transcript failed",
		zap.String("ip", clientIP),
		zap.String("op", "transcript"),
		zap.String("video_id", req.VideoID),
		zap.String("video_url", req.URL),
		zap.Error(err),
	)
}

func respondJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}
