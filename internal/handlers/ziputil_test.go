package handlers

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestZip(t *testing.T, path string, files map[string]os.FileMode) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, mode := range files {
		hdr := &zip.FileHeader{Name: name}
		hdr.SetMode(mode)
		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)
		_, err = w.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestExtractZipWritesFilesWithModes(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "bundle.zip")
	writeTestZip(t, zipPath, map[string]os.FileMode{
		"run.sh":          0o755,
		"nested/data.txt": 0o644,
	})

	destDir := filepath.Join(dir, "out")
	require.NoError(t, extractZip(zipPath, destDir))

	b, err := os.ReadFile(filepath.Join(destDir, "run.sh"))
	require.NoError(t, err)
	require.Equal(t, "content of run.sh", string(b))
	fi, err := os.Stat(filepath.Join(destDir, "run.sh"))
	require.NoError(t, err)
	require.NotZero(t, fi.Mode()&0o111, "run.sh should keep its executable bits")

	b, err = os.ReadFile(filepath.Join(destDir, "nested", "data.txt"))
	require.NoError(t, err)
	require.Equal(t, "content of nested/data.txt", string(b))
}

func TestExtractZipRejectsPathEscape(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	writeTestZip(t, zipPath, map[string]os.FileMode{
		"../escaped.txt": 0o644,
	})

	err := extractZip(zipPath, filepath.Join(dir, "out"))
	require.Error(t, err)
}

func TestFindAnyExecutablePrefersShallowest(t *testing.T) {
	dir := t.TempDir()
	deep := filepath.Join(dir, "a", "b", "deep.sh")
	shallow := filepath.Join(dir, "shallow.sh")
	require.NoError(t, os.MkdirAll(filepath.Dir(deep), 0o755))
	require.NoError(t, os.WriteFile(deep, []byte("x"), 0o755))
	require.NoError(t, os.WriteFile(shallow, []byte("x"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))

	found, err := findAnyExecutable(dir)
	require.NoError(t, err)
	require.Equal(t, shallow, found)
}

func TestFindAnyExecutableNoneFound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))

	found, err := findAnyExecutable(dir)
	require.NoError(t, err)
	require.Equal(t, "", found)
}
