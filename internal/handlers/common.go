package handlers

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gravitational/trace"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/desktopfile"
)

// moveFile moves src to dst, falling back to copy+remove when they are on
// different filesystems (os.Rename fails with EXDEV in that case — common
// when the temp dir and /opt or /usr/local/bin are separate mounts).
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return trace.Wrap(err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return trace.Wrap(err)
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
	if err != nil {
		return trace.Wrap(err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return trace.Wrap(err)
	}
	if err := out.Close(); err != nil {
		return trace.Wrap(err)
	}
	return os.Remove(src)
}

// removeIfExists deletes path; a missing path is not an error.
func removeIfExists(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return trace.Wrap(err)
	}
	return nil
}

func chmodExecutable(path string) error {
	return os.Chmod(path, 0o755)
}

// replaceSymlink creates a symlink at linkPath pointing at target, removing
// any prior symlink/file at linkPath first (the teacher's unpackDir in
// cmd/distri/install.go follows the same remove-then-recreate pattern for
// conflicting symlinks).
func replaceSymlink(target, linkPath string) error {
	if err := os.MkdirAll(filepath.Dir(linkPath), 0o755); err != nil {
		return trace.Wrap(err)
	}
	if _, err := os.Lstat(linkPath); err == nil {
		if err := os.Remove(linkPath); err != nil {
			return trace.Wrap(err)
		}
	}
	return os.Symlink(target, linkPath)
}

// hasDesktopMetadata reports whether the descriptor carries any metadata at
// all, per spec.md §4.5.3's "creates a .desktop entry if metadata present":
// the original's _create_desktop_file fires unconditionally whenever a
// package declares a metadata object, not only when specific desktop-file
// fields are set.
func hasDesktopMetadata(m tpt.Metadata) bool {
	return m != (tpt.Metadata{})
}

func writeDesktop(aplicacionesRoot string, d tpt.Descriptor, execPath string) (string, error) {
	return desktopfile.Write(aplicacionesRoot, desktopfile.Spec{
		Name:       d.Name,
		Comment:    d.Description,
		ExecPath:   execPath,
		Icon:       d.Metadata.Icon,
		Terminal:   d.Metadata.Terminal,
		Categories: d.Metadata.Categories,
	})
}
