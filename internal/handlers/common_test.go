package handlers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	tpt "github.com/tpt-project/tpt"
)

func TestMoveFileRenamesWithinSameDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	dst := filepath.Join(dir, "nested", "dst")
	require.NoError(t, moveFile(src, dst))

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "payload", string(b))
	_, err = os.Stat(src)
	require.True(t, os.IsNotExist(err))
}

func TestRemoveIfExistsOnMissingPathIsNotAnError(t *testing.T) {
	require.NoError(t, removeIfExists(filepath.Join(t.TempDir(), "nope")))
	require.NoError(t, removeIfExists(""))
}

func TestReplaceSymlinkReplacesPriorLink(t *testing.T) {
	dir := t.TempDir()
	targetA := filepath.Join(dir, "a")
	targetB := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(targetA, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(targetB, []byte("b"), 0o644))

	link := filepath.Join(dir, "link")
	require.NoError(t, replaceSymlink(targetA, link))
	require.NoError(t, replaceSymlink(targetB, link))

	resolved, err := os.Readlink(link)
	require.NoError(t, err)
	require.Equal(t, targetB, resolved)
}

func TestHasDesktopMetadata(t *testing.T) {
	require.False(t, hasDesktopMetadata(tpt.Metadata{}))
	require.True(t, hasDesktopMetadata(tpt.Metadata{Icon: "foo"}))
	require.True(t, hasDesktopMetadata(tpt.Metadata{Terminal: true}))
	require.True(t, hasDesktopMetadata(tpt.Metadata{Categories: "Utility;"}))
}
