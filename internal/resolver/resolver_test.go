package resolver

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/manifest"
)

func TestMatchesCaseInsensitiveSubstring(t *testing.T) {
	require.True(t, matches("fire", "firefox", "a web browser", nil))
	require.True(t, matches("browser", "firefox", "a web browser", nil))
	require.True(t, matches("tag1", "firefox", "", []string{"Tag1", "tag2"}))
	require.False(t, matches("chrome", "firefox", "a web browser", []string{"tag1"}))
}

func TestDescriptorFromManifestEntryInfersFormatFromURL(t *testing.T) {
	entry := manifest.PackageManifestEntry{
		Version:     "1.0.0",
		Description: "a test package",
		DownloadURL: "https://repo.example/foo.deb",
	}
	d := descriptorFromManifestEntry("foo", "https://repo.example", entry)
	require.Equal(t, tpt.FormatDeb, d.Format)
	require.Equal(t, tpt.SourceTPT, d.Source)
	require.Equal(t, "1.0.0", d.Version)
}

func TestConventionDescriptorStampsSentinelVersion(t *testing.T) {
	d := conventionDescriptor("foo", ".AppImage", "https://repo.example/regular/foo.AppImage")
	require.Equal(t, tpt.ConventionVersion, d.Version)
	require.Equal(t, tpt.FormatAppImage, d.Format)
	require.Equal(t, "https://repo.example/regular/foo.AppImage", d.DownloadURL)
}

func TestAsGitCloneURLAppendsDotGit(t *testing.T) {
	url, name, ok := asGitCloneURL("https://example.com/repos/myrepo")
	require.True(t, ok)
	require.Equal(t, "https://example.com/repos/myrepo.git", url)
	require.Equal(t, "myrepo", name)
}

func TestAsGitCloneURLLeavesExistingDotGit(t *testing.T) {
	url, name, ok := asGitCloneURL("https://example.com/repos/myrepo.git")
	require.True(t, ok)
	require.Equal(t, "https://example.com/repos/myrepo.git", url)
	require.Equal(t, "myrepo", name)
}

func TestAsGitCloneURLRejectsEmpty(t *testing.T) {
	_, _, ok := asGitCloneURL("")
	require.False(t, ok)
}

func TestURLCacheStoreAndLookupRoundTrips(t *testing.T) {
	c := newURLCache(t.TempDir())
	c.store("foo", ".deb", "https://repo.example/regular/foo.deb", true)

	e, ok := c.lookup("foo", ".deb")
	require.True(t, ok)
	require.True(t, e.Exists)
	require.Equal(t, "https://repo.example/regular/foo.deb", e.URL)
}

func TestURLCacheLookupMissReturnsFalse(t *testing.T) {
	c := newURLCache(t.TempDir())
	_, ok := c.lookup("nonexistent", ".deb")
	require.False(t, ok)
}

func TestURLCacheExpiredEntryIsNotReturned(t *testing.T) {
	c := newURLCache(t.TempDir())
	stale := urlCacheEntry{
		URL:       "https://repo.example/regular/foo.deb",
		Exists:    true,
		CheckedAt: time.Now().UTC().Add(-25 * time.Hour),
	}
	b, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(c.dir, 0o755))
	require.NoError(t, os.WriteFile(c.path("foo", ".deb"), b, 0o644))

	_, ok := c.lookup("foo", ".deb")
	require.False(t, ok)
}

func TestReadPackagesJSONFindsEntry(t *testing.T) {
	dir := t.TempDir()
	doc := `{"packages":{"foo":{"version":"2.0.0","download_url":"https://x/foo.tar.gz"}}}`
	require.NoError(t, os.WriteFile(dir+"/packages.json", []byte(doc), 0o644))

	entry, found, err := readPackagesJSON(dir, "foo")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2.0.0", entry.Version)

	_, found, err = readPackagesJSON(dir, "bar")
	require.NoError(t, err)
	require.False(t, found)
}
