package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	tpt "github.com/tpt-project/tpt"
)

func TestFileSuffixForPrefersDescriptorFormat(t *testing.T) {
	d := tpt.Descriptor{Format: tpt.FormatTarXz, DownloadURL: "https://example.com/pkg.zip"}
	require.Equal(t, string(tpt.FormatTarXz), fileSuffixFor(d))
}

func TestFileSuffixForInfersFromURLWhenFormatAbsent(t *testing.T) {
	d := tpt.Descriptor{DownloadURL: "https://example.com/pkg.deb"}
	require.Equal(t, string(tpt.FormatDeb), fileSuffixFor(d))
}

func TestVerifySHA256Matches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	// sha256("hello")
	require.NoError(t, verifySHA256(path, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"))
}

func TestVerifySHA256Mismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	err := verifySHA256(path, "0000000000000000000000000000000000000000000000000000000000000000")
	require.Error(t, err)
}

func TestContainsWordExactMatchOnly(t *testing.T) {
	require.True(t, containsWord("ii  firefox   1.0  amd64  web browser", "firefox"))
	require.False(t, containsWord("ii  firefox-esr 1.0 amd64", "firefox"))
}

func TestCopyFileDuplicatesContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))
	require.NoError(t, copyFile(src, dst))

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "payload", string(b))
}
