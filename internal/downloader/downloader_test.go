package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("package-bytes"))
	}))
	defer srv.Close()

	d := New(Options{Timeout: 5 * time.Second, SSLVerify: true})
	dest := filepath.Join(t.TempDir(), "sub", "pkg.bin")

	var last Progress
	err := d.Fetch(context.Background(), srv.URL, dest, "pkg", "TPT-PackageManager/1", func(p Progress) {
		last = p
	})
	require.NoError(t, err)

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "package-bytes", string(b))
	require.Equal(t, int64(len("package-bytes")), last.BytesDone)
}

func TestFetch404RemovesPartialFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := New(Options{Timeout: 5 * time.Second, SSLVerify: true})
	dest := filepath.Join(t.TempDir(), "pkg.bin")

	err := d.Fetch(context.Background(), srv.URL, dest, "pkg", "", nil)
	require.Error(t, err)
	_, statErr := os.Stat(dest)
	require.True(t, os.IsNotExist(statErr))
}

func TestFetchMidStreamFailureRemovesPartialFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000000")
		flusher, ok := w.(http.Flusher)
		w.Write([]byte("partial"))
		if ok {
			flusher.Flush()
		}
		hj, ok := w.(http.Hijacker)
		if ok {
			conn, _, err := hj.Hijack()
			if err == nil {
				conn.Close()
			}
		}
	}))
	defer srv.Close()

	d := New(Options{Timeout: 5 * time.Second, SSLVerify: true})
	dest := filepath.Join(t.TempDir(), "pkg.bin")

	err := d.Fetch(context.Background(), srv.URL, dest, "pkg", "", nil)
	require.Error(t, err)
	_, statErr := os.Stat(dest)
	require.True(t, os.IsNotExist(statErr))
}
