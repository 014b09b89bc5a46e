package manifest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tpt-project/tpt/internal/downloader"
)

func newFetcher(t *testing.T) *Fetcher {
	return &Fetcher{
		Downloader: downloader.New(downloader.Options{Timeout: 5 * time.Second, SSLVerify: true}),
		CacheDir:   t.TempDir(),
	}
}

func TestFetchParsesCanonicalSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"repository_name":"r","last_updated":"2026-01-01T00:00:00Z","packages":{"hello":{"version":"1.0","description":"d"}}}`))
	}))
	defer srv.Close()

	f := newFetcher(t)
	m, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "1.0", m.Packages["hello"].Version)
}

func TestFetchFallsBackToCacheOnNetworkFailure(t *testing.T) {
	f := newFetcher(t)

	// Prime the cache with a first successful fetch.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"packages":{"cached":{"version":"2.0"}}}`))
	}))
	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	srv.Close()

	// Now the same repo URL is unreachable; the cached copy should be used.
	m, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "2.0", m.Packages["cached"].Version)
}

func TestFetchNoCacheAndNetworkFailureErrors(t *testing.T) {
	f := newFetcher(t)
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1")
	require.Error(t, err)
}

func TestFetchOverwritesCacheEveryTime(t *testing.T) {
	f := newFetcher(t)

	var version string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"packages":{"x":{"version":"` + version + `"}}}`))
	}))
	defer srv.Close()

	version = "1.0"
	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	version = "2.0"
	m, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "2.0", m.Packages["x"].Version)

	// Cache file on disk reflects the latest fetch too.
	b, err := os.ReadFile(f.cachePath(srv.URL))
	require.NoError(t, err)
	require.Contains(t, string(b), "2.0")
}
