package collyfetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kedra-data/wrc-harvester/internal/harvest"
)

func TestFetchReturnsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "wrc-harvester-test/1.0", r.UserAgent())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "wrc-harvester-test/1.0"})
	resp, err := f.Fetch(context.Background(), srv.URL+"/en/search/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []byte("<html><body>ok</body></html>"), resp.Body)
	require.Equal(t, srv.URL+"/en/search/", resp.URL)
	require.Positive(t, resp.Duration)
}

func TestFetchReportsHTTPErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Config{})
	_, err := f.Fetch(context.Background(), srv.URL+"/missing")
	var fetchErr *harvest.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, srv.URL+"/missing", fetchErr.URL)
}

func TestFetchHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := New(Config{Timeout: time.Minute})
	_, err := f.Fetch(ctx, srv.URL+"/slow")
	var fetchErr *harvest.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchReportsUnreachableHosts(t *testing.T) {
	t.Parallel()

	f := New(Config{Timeout: time.Second})
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/nothing")
	var fetchErr *harvest.FetchError
	require.ErrorAs(t, err, &fetchErr)
}
