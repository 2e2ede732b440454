package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSinkWrite(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(filepath.Join(dir, "transcripts"), zap.NewNop())

	sink.Write("dQw4w9WgXcQ", "never gonna give you up")

	data, err := os.ReadFile(filepath.Join(dir, "transcripts", "dQw4w9WgXcQ.txt"))
	require.NoError(t, err)
	require.Equal(t, "never gonna give you up", string(data))
}

func TestSinkWriteOverwrites(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(dir, zap.NewNop())

	sink.Write("abc123", "first")
	sink.Write("abc123", "second")

	data, err := os.ReadFile(filepath.Join(dir, "abc123.txt"))
	require.NoError(t, err)
	require.Equal(t, "second", string(data))
}

func TestSinkWriteSanitizesName(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(dir, zap.NewNop())

	sink.Write("../../../etc/passwd", "payload")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "etcpasswd.txt", entries[0].Name())
}

func TestSinkDisabledWithoutDir(t *testing.T) {
	sink := &Sink{Logger: zap.NewNop()}
	sink.Write("abc123", "text")

	var nilSink *Sink
	nilSink.Write("abc123", "text")
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain id", input: "dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "strips path separators", input: "a/b\\c", want: "abc"},
		{name: "keeps dash and underscore", input: "a-b_c", want: "a-b_c"},
		{name: "empty becomes unknown", input: "", want: "unknown"},
		{name: "all invalid becomes unknown", input: "../..", want: "unknown"},
		{name: "caps length", input: strings.Repeat("a", 500), want: strings.Repeat("a", 128)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SafeFilename(tt.input))
		})
	}
}
