// Package downloader streams a URL to a destination path with progress
// reporting and partial-file cleanup. Grounded on the teacher's HTTP client
// setup in cmd/distri/install.go (repoReader: shared *http.Client,
// gzip-aware transport) and extended with a free-space preflight check
// supplementing the original Python's verificar_espacio_libre.
package downloader

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/tpt-project/tpt/internal/tpterr"
)

const chunkSize = 8 * 1024

// Progress is one progress update emitted during a Fetch.
type Progress struct {
	BytesDone int64
	Total     int64
	Label     string
}

// ProgressFunc receives periodic Progress updates. It may be nil.
type ProgressFunc func(Progress)

// Options configures a Downloader built by New. OnProgress is not read by
// New; Fetch takes its progress callback as an argument.
type Options struct {
	Timeout    time.Duration
	SSLVerify  bool
	UserAgent  string
	OnProgress ProgressFunc
}

// Downloader streams HTTP responses to disk.
type Downloader struct {
	client *http.Client
}

// New builds a Downloader honoring the configured timeout and SSL-verify
// flag (the latter by swapping in an insecure transport only when
// explicitly disabled — never the default).
func New(opts Options) *Downloader {
	transport := http.DefaultTransport
	if !opts.SSLVerify {
		transport = insecureTransport()
	}
	return &Downloader{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
	}
}

// Fetch streams url to dest, creating parent directories as needed. On any
// failure the partial file is removed before returning a tpterr.Download
// error. label is forwarded verbatim in Progress updates for UI display.
func (d *Downloader) Fetch(ctx context.Context, url, dest, label string, userAgent string, onProgress ProgressFunc) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return tpterr.NewDownload(url, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return tpterr.NewDownload(url, err.Error())
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return tpterr.NewDownload(url, err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return tpterr.NewDownload(url, "HTTP status "+resp.Status)
	}

	f, err := os.Create(dest)
	if err != nil {
		return tpterr.NewDownload(url, err.Error())
	}

	cleanup := func() {
		f.Close()
		os.Remove(dest)
	}

	total := resp.ContentLength
	var done int64
	buf := make([]byte, chunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				cleanup()
				return tpterr.NewDownload(url, werr.Error())
			}
			done += int64(n)
			if onProgress != nil {
				onProgress(Progress{BytesDone: done, Total: total, Label: label})
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			cleanup()
			return tpterr.NewDownload(url, rerr.Error())
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(dest)
		return tpterr.NewDownload(url, err.Error())
	}
	return nil
}

// ContentLength issues a HEAD request and returns the advertised
// Content-Length, or 0 if the server omits it. Used for the free-disk-space
// preflight ahead of a Fetch.
func (d *Downloader) ContentLength(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, tpterr.NewDownload(url, err.Error())
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, tpterr.NewDownload(url, err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, nil
	}
	if resp.ContentLength < 0 {
		return 0, nil
	}
	return resp.ContentLength, nil
}

// HeadExists issues a HEAD request and reports whether the server answered
// 200 OK. Used by the resolver's convention fallback to probe candidate
// URLs without downloading their bodies.
func (d *Downloader) HeadExists(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, tpterr.NewDownload(url, err.Error())
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return false, tpterr.NewDownload(url, err.Error())
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func insecureTransport() http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in via settings.ssl_verify=false
	return t
}

// CheckFreeSpace returns a Critical error if the filesystem holding dir has
// less than need bytes free. This is the preflight named in SPEC_FULL.md §4,
// grounded on the original's verificar_espacio_libre.
func CheckFreeSpace(dir string, need int64) error {
	if need <= 0 {
		return nil
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return tpterr.NewCritical("checking free space on " + dir + ": " + err.Error())
	}
	free := int64(stat.Bavail) * int64(stat.Bsize)
	if free < need {
		return tpterr.NewCritical("insufficient free space on " + dir)
	}
	return nil
}
