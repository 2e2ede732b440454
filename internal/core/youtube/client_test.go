package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const watchPageTemplate = `<!DOCTYPE html>
<html><head><title>watch</title></head>
<body>
<script>var other = 1;</script>
<script>var ytInitialPlayerResponse = %s;var ytcfg = {};</script>
</body></html>`

func playerJSON(tracks string) string {
	return fmt.Sprintf(`{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[%s]}},"videoDetails":{"videoId":"x"}}`, tracks)
}

func trackJSON(srv *httptest.Server, lang string) string {
	return fmt.Sprintf(`{"baseUrl":"%s/api/timedtext?lang=%s","languageCode":"%s"}`, srv.URL, lang, lang)
}

func TestFetchTranscript(t *testing.T) {
	timed := `{"events":[{"segs":[{"utf8":"hello"},{"utf8":"\n"}]},{"segs":[{"utf8":"world"}]}]}`

	// The caption track URLs embed the server's own address, so the handler
	// is installed after the listener is up.
	srv := httptest.NewServer(nil)
	defer srv.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		tracks := trackJSON(srv, "it") + "," + trackJSON(srv, "en")
		fmt.Fprintf(w, watchPageTemplate, playerJSON(tracks))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fmt") != "json3" {
			http.Error(w, "bad format", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, timed)
	})
	srv.Config.Handler = mux

	client, err := NewClient(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	text, err := client.FetchTranscript(context.Background(), "dQw4w9WgXcQ", []string{"en", "it"})
	require.NoError(t, err)
	require.Equal(t, "hello world", text)
}

func TestFetchTranscriptNoCaptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, watchPageTemplate, playerJSON(""))
	}))
	defer srv.Close()

	client, err := NewClient(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.FetchTranscript(context.Background(), "abc123def45", nil)
	require.ErrorIs(t, err, ErrNoCaptions)
}

func TestFetchTranscriptNoMatchingLanguage(t *testing.T) {
	srv := httptest.NewServer(nil)
	defer srv.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, watchPageTemplate, playerJSON(trackJSON(srv, "de")))
	})
	srv.Config.Handler = mux

	client, err := NewClient(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.FetchTranscript(context.Background(), "abc123def45", []string{"en", "it"})
	require.ErrorIs(t, err, ErrNoMatchingLanguage)
}

func TestFetchTranscriptMissingPlayerResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><script>var x = 1;</script></body></html>`)
	}))
	defer srv.Close()

	client, err := NewClient(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.FetchTranscript(context.Background(), "abc123def45", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "player response")
}

func TestFetchTranscriptUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewClient(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.FetchTranscript(context.Background(), "abc123def45", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestNewClientBadProxy(t *testing.T) {
	_, err := NewClient(Options{ProxyURL: "http://%zz"})
	require.Error(t, err)
}

func TestPickTrack(t *testing.T) {
	tracks := []captionTrack{
		{LanguageCode: "de"},
		{LanguageCode: "en-US"},
		{LanguageCode: "it"},
	}

	tests := []struct {
		name      string
		languages []string
		want      string
		wantErr   error
	}{
		{name: "exact match", languages: []string{"it"}, want: "it"},
		{name: "preference order wins", languages: []string{"it", "de"}, want: "it"},
		{name: "case insensitive", languages: []string{"EN-us"}, want: "en-US"},
		{name: "base language fallback", languages: []string{"en"}, want: "en-US"},
		{name: "no preference takes first", languages: nil, want: "de"},
		{name: "no match", languages: []string{"fr"}, wantErr: ErrNoMatchingLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pickTrack(tracks, tt.languages)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.LanguageCode)
		})
	}
}

func TestTimedTextPlainText(t *testing.T) {
	timed := timedText{Events: []timedEvent{
		{Segs: []timedSeg{{UTF8: "first"}, {UTF8: "\n"}}},
		{Segs: nil},
		{Segs: []timedSeg{{UTF8: " second "}, {UTF8: "third"}}},
	}}
	require.Equal(t, "first second third", timed.PlainText())
}
