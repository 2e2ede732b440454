package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xoroz/yt-transcript/internal/core"
)

// GetTranscript returns the cached transcript for a video id, or nil if the
// cache has no entry. It never reaches for the network.
func (s *Store) GetTranscript(ctx context.Context, videoID string) (*core.Transcript, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	key := strings.TrimSpace(videoID)
	if key == "" {
		return nil, errors.New("video id is required")
	}

	var (
		text      string
		createdAt int64
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT text, created_at
		FROM transcripts
		WHERE video_id = ?
	`, key)

	if err := row.Scan(&text, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch cached transcript: %w", err)
	}

	return &core.Transcript{
		VideoID:   key,
		Text:      text,
		CreatedAt: time.Unix(createdAt, 0).UTC(),
	}, nil
}

// PutTranscript upserts the transcript for a video id. The write is a single
// statement, so readers observe either the old row or the new one, never a
// mixture. The last successful write wins.
func (s *Store) PutTranscript(ctx context.Context, videoID string, text string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	key := strings.TrimSpace(videoID)
	if key == "" {
		return errors.New("video id is required")
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO transcripts (video_id, text, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			text = excluded.text,
			created_at = excluded.created_at
	`, key, text, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("store transcript: %w", err)
	}

	return nil
}

// DeleteTranscript removes a cached transcript. Used by the admin purge
// path; the gateway itself never deletes.
func (s *Store) DeleteTranscript(ctx context.Context, videoID string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	key := strings.TrimSpace(videoID)
	if key == "" {
		return errors.New("video id is required")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM transcripts WHERE video_id = ?`, key); err != nil {
		return fmt.Errorf("delete transcript: %w", err)
	}

	return nil
}

// CountTranscripts reports the number of cached entries.
func (s *Store) CountTranscripts(ctx context.Context) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var count int64
	row := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM transcripts`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count transcripts: %w", err)
	}

	return count, nil
}
