package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/xoroz/yt-transcript/internal/errors"
)

// AdminStore is the slice of the store the admin endpoints need.
type AdminStore interface {
	DeleteTranscript(ctx context.Context, videoID string) error
	CountTranscripts(ctx context.Context) (int64, error)
}

var (
	adminStore AdminStore
	adminToken string
)

// SetAdminDeps injects the store and bearer token for the admin endpoints.
// An empty token disables them.
func SetAdminDeps(store AdminStore, token string) {
	adminStore = store
	adminToken = token
}

func authorizeAdmin(w http.ResponseWriter, r *http.Request) bool {
	if adminToken == "" || adminStore == nil {
		respondWithError(w, r, apperrors.NewNotFoundError("admin endpoints are disabled"))
		return false
	}

	got := r.Header.Get("Authorization")
	want := "Bearer " + adminToken
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		respondWithError(w, r, apperrors.NewUnauthorizedError("invalid admin token"))
		return false
	}
	return true
}

// PurgeTranscriptHandler removes one cached transcript. This is the only
// eviction path; the cache otherwise grows without bound.
func PurgeTranscriptHandler(w http.ResponseWriter, r *http.Request) {
	if !authorizeAdmin(w, r) {
		return
	}

	videoID := chi.URLParam(r, "videoID")
	if videoID == "" {
		respondWithError(w, r, apperrors.NewInvalidInputError("video id is required"))
		return
	}

	if err := adminStore.DeleteTranscript(r.Context(), videoID); err != nil {
		respondWithError(w, r, apperrors.WrapStorageError(r.Context(), err, "could not purge transcript"))
		return
	}

	respondJSON(w, map[string]any{"video_id": videoID, "purged": true})
}

// CacheStatsHandler reports the durable cache size.
func CacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	if !authorizeAdmin(w, r) {
		return
	}

	count, err := adminStore.CountTranscripts(r.Context())
	if err != nil {
		respondWithError(w, r, apperrors.WrapStorageError(r.Context(), err, "could not count transcripts"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"transcripts": count})
}
