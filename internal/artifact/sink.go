// Package artifact persists resolved transcripts as plain-text files for
// offline inspection. Writes are best effort: a failed write is logged and
// never surfaces to the caller.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const maxFilenameLen = 128

// Sink writes one <video_id>.txt per resolved transcript under Dir,
// overwriting any previous copy.
type Sink struct {
	Dir    string
	Logger *zap.Logger
}

// NewSink creates a sink rooted at dir. The directory is created lazily on
// first write.
func NewSink(dir string, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{Dir: dir, Logger: logger}
}

// Write stores text under a sanitized filename derived from videoID. Errors
// are logged, not returned.
func (s *Sink) Write(videoID, text string) {
	if s == nil || s.Dir == "" {
		return
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		s.Logger.Warn("create artifact directory failed",
			zap.String("dir", s.Dir),
			zap.Error(err))
		return
	}

	name := SafeFilename(videoID) + ".txt"
	path := filepath.Join(s.Dir, name)

	// Write to a temp file first so readers never see a partial artifact.
	tmp, err := os.CreateTemp(s.Dir, name+".tmp-*")
	if err != nil {
		s.Logger.Warn("create artifact temp file failed",
			zap.String("video_id", videoID),
			zap.Error(err))
		return
	}

	_, werr := tmp.WriteString(text)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmp.Name())
		s.Logger.Warn("write artifact failed",
			zap.String("video_id", videoID),
			zap.Error(fmt.Errorf("write: %v, close: %v", werr, cerr)))
		return
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		s.Logger.Warn("finalize artifact failed",
			zap.String("video_id", videoID),
			zap.Error(err))
		return
	}

	s.Logger.Debug("artifact written",
		zap.String("video_id", videoID),
		zap.String("path", path),
		zap.Int("bytes", len(text)))
}

// SafeFilename reduces s to characters safe for a filename on any platform:
// letters, digits, dash and underscore, capped at 128 characters. An input
// with nothing usable maps to "unknown".
func SafeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
		if b.Len() >= maxFilenameLen {
			break
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
