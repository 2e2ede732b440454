//go:build cgo

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xoroz/yt-transcript/internal/config"
)

func openMemoryStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	st, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpenMemoryStore(t *testing.T) {
	st := openMemoryStore(t)
	require.Equal(t, "libsql", st.Driver())
	require.NoError(t, st.Ping(context.Background()))
}

func TestTranscriptRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openMemoryStore(t)

	t.Run("MissReturnsNil", func(t *testing.T) {
		got, err := st.GetTranscript(ctx, "missing")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("PutThenGet", func(t *testing.T) {
		require.NoError(t, st.PutTranscript(ctx, "abc123", "hello world"))

		got, err := st.GetTranscript(ctx, "abc123")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, "abc123", got.VideoID)
		require.Equal(t, "hello world", got.Text)
		require.False(t, got.CreatedAt.IsZero())
	})

	t.Run("LastWriteWins", func(t *testing.T) {
		require.NoError(t, st.PutTranscript(ctx, "abc123", "first"))
		require.NoError(t, st.PutTranscript(ctx, "abc123", "second"))

		got, err := st.GetTranscript(ctx, "abc123")
		require.NoError(t, err)
		require.Equal(t, "second", got.Text)

		count, err := st.CountTranscripts(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(1), count)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, st.PutTranscript(ctx, "gone", "bye"))
		require.NoError(t, st.DeleteTranscript(ctx, "gone"))

		got, err := st.GetTranscript(ctx, "gone")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("EmptyKeyRejected", func(t *testing.T) {
		_, err := st.GetTranscript(ctx, "  ")
		require.Error(t, err)
		require.Error(t, st.PutTranscript(ctx, "", "text"))
	})
}
