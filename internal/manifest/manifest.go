// Package manifest fetches and caches each configured repository's
// packages.json. Grounded on the teacher's repoReader (cmd/distri/install.go),
// generalized from squashfs/textproto package metadata to the canonical JSON
// manifest schema named in spec.md §6.
package manifest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gravitational/trace"

	"github.com/tpt-project/tpt/internal/downloader"
)

// Manifest is the canonical repository manifest schema (spec.md §6). Older
// schema variants emitted by the original repo-index scripts are tolerated
// on read: unknown top-level fields are ignored and the "packages" map is
// the only one ever consulted.
type Manifest struct {
	RepositoryName string                        `json:"repository_name"`
	LastUpdated    string                         `json:"last_updated"`
	Packages       map[string]PackageManifestEntry `json:"packages"`
}

// PackageManifestEntry is one entry in Manifest.Packages.
type PackageManifestEntry struct {
	Version     string            `json:"version"`
	Description string            `json:"description"`
	DownloadURL string            `json:"download_url,omitempty"`
	SHA256      string            `json:"sha256,omitempty"`
	Format      string            `json:"format,omitempty"`
	Extension   string            `json:"extension,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
	Keywords    []string          `json:"keywords,omitempty"`
}

// Fetcher retrieves and caches per-repository manifests.
type Fetcher struct {
	Downloader *downloader.Downloader
	CacheDir   string
	UserAgent  string
}

// Fetch retrieves <repoURL>/packages.json. On network failure it falls back
// to the cached copy if one exists; the cache has no TTL and is overwritten
// on every successful fetch.
func (f *Fetcher) Fetch(ctx context.Context, repoURL string) (*Manifest, error) {
	cachePath := f.cachePath(repoURL)

	tmp := cachePath + ".tmp"
	err := f.Downloader.Fetch(ctx, repoURL+"/packages.json", tmp, repoURL, f.UserAgent, nil)
	if err != nil {
		b, readErr := os.ReadFile(cachePath)
		if readErr != nil {
			return nil, trace.Wrap(err)
		}
		return parse(b)
	}
	defer os.Remove(tmp)

	b, err := os.ReadFile(tmp)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	m, err := parse(b)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return nil, trace.Wrap(err)
	}
	if err := os.WriteFile(cachePath, b, 0o644); err != nil {
		return nil, trace.Wrap(err)
	}
	return m, nil
}

func parse(b []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, trace.Wrap(err)
	}
	if m.Packages == nil {
		return nil, trace.BadParameter("manifest has no \"packages\" object")
	}
	return &m, nil
}

func (f *Fetcher) cachePath(repoURL string) string {
	sum := sha256.Sum256([]byte(repoURL))
	return filepath.Join(f.CacheDir, hex.EncodeToString(sum[:]))
}
