package desktopfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteProducesExpectedFields(t *testing.T) {
	root := t.TempDir()
	path, err := Write(root, Spec{
		Name:     "hello",
		Comment:  "A greeter",
		ExecPath: "/usr/local/bin/hello",
		Terminal: true,
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "hello.desktop"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(b)
	require.Contains(t, content, "Name=hello")
	require.Contains(t, content, "Exec=/usr/local/bin/hello")
	require.Contains(t, content, "Icon=application-x-executable")
	require.Contains(t, content, "Terminal=true")
	require.Contains(t, content, "Categories=Utility;")
}

func TestRemoveMissingFileIsNotAnError(t *testing.T) {
	require.NoError(t, Remove(filepath.Join(t.TempDir(), "missing.desktop")))
	require.NoError(t, Remove(""))
}

func TestRemoveDeletesFile(t *testing.T) {
	root := t.TempDir()
	path, err := Write(root, Spec{Name: "app", ExecPath: "/usr/local/bin/app"})
	require.NoError(t, err)
	require.NoError(t, Remove(path))
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}
