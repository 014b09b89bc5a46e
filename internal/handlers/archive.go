package handlers

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gravitational/trace"
	"github.com/ulikunitz/xz"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/config"
	"github.com/tpt-project/tpt/internal/desktopfile"
)

// ArchiveHandler extracts .tar.gz/.tgz/.tar.xz archives into /opt/<name>,
// locates a main executable, and symlinks it into the executable root.
// Grounded on tpt_project/handlers/archive_handler.py; .tar.xz
// decompression uses github.com/ulikunitz/xz in-process instead of shelling
// out to unxz/tar, following the "enrich from the rest of the pack" rule
// (the library is used across several manifests in the pack's search
// corpus for exactly this purpose).
type ArchiveHandler struct{}

func (h *ArchiveHandler) Tag() tpt.HandlerTag { return tpt.HandlerArchive }

func (h *ArchiveHandler) Install(ctx context.Context, env *Env, d tpt.Descriptor, tempFile string) (tpt.InstallationDetails, error) {
	destDir := filepath.Join(config.DirOptRoot, d.Name)
	if err := os.RemoveAll(destDir); err != nil {
		return tpt.InstallationDetails{}, trace.Wrap(err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return tpt.InstallationDetails{}, trace.Wrap(err)
	}

	strip := 1
	if d.Metadata.StripComponents != nil {
		strip = *d.Metadata.StripComponents
	}

	f, err := os.Open(tempFile)
	if err != nil {
		return tpt.InstallationDetails{}, trace.Wrap(err)
	}
	defer f.Close()

	var r io.Reader = f
	if d.Format == tpt.FormatTarXz {
		xr, err := xz.NewReader(f)
		if err != nil {
			return tpt.InstallationDetails{}, trace.Wrap(err)
		}
		r = xr
	} else {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return tpt.InstallationDetails{}, trace.Wrap(err)
		}
		defer gr.Close()
		r = gr
	}

	if err := extractTar(r, destDir, strip); err != nil {
		return tpt.InstallationDetails{}, trace.Wrap(err)
	}

	mainExec, err := findMainExecutable(destDir, d.Name)
	details := tpt.InstallationDetails{
		Handler:     tpt.HandlerArchive,
		InstallPath: destDir,
	}
	if err == nil && mainExec != "" {
		link := filepath.Join(config.DirEjecutablesRoot, d.Name)
		if err := replaceSymlink(mainExec, link); err != nil {
			return tpt.InstallationDetails{}, trace.Wrap(err)
		}
		details.SymlinkPath = link

		desktopPath, err := writeDesktop(config.DirAplicacionesRoot, d, link)
		if err != nil {
			return tpt.InstallationDetails{}, trace.Wrap(err)
		}
		details.DesktopFile = desktopPath
	}
	return details, nil
}

func (h *ArchiveHandler) Uninstall(ctx context.Context, env *Env, details tpt.InstallationDetails) error {
	if err := os.RemoveAll(details.InstallPath); err != nil {
		return trace.Wrap(err)
	}
	if err := removeIfExists(details.SymlinkPath); err != nil {
		return trace.Wrap(err)
	}
	return desktopfile.Remove(details.DesktopFile)
}

func extractTar(r io.Reader, destDir string, strip int) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return trace.Wrap(err)
		}
		name := stripComponents(hdr.Name, strip)
		if name == "" {
			continue
		}
		target := filepath.Join(destDir, name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return trace.Wrap(err)
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return trace.Wrap(err)
			}
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return trace.Wrap(err)
			}
		default:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return trace.Wrap(err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
			if err != nil {
				return trace.Wrap(err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return trace.Wrap(err)
			}
			if err := out.Close(); err != nil {
				return trace.Wrap(err)
			}
		}
	}
}

func stripComponents(name string, n int) string {
	parts := strings.Split(filepath.ToSlash(name), "/")
	if n >= len(parts) {
		return ""
	}
	return filepath.Join(parts[n:]...)
}

// findMainExecutable searches, in order: an exact match for name at the
// extract dir root, any executable file in bin/, then the first executable
// file found at the root. Per spec.md §4.5.5.
func findMainExecutable(destDir, name string) (string, error) {
	exact := filepath.Join(destDir, name)
	if isExecutableFile(exact) {
		return exact, nil
	}

	binDir := filepath.Join(destDir, "bin")
	if entries, err := os.ReadDir(binDir); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			p := filepath.Join(binDir, e.Name())
			if isExecutableFile(p) {
				return p, nil
			}
		}
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", trace.Wrap(err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(destDir, e.Name())
		if isExecutableFile(p) {
			return p, nil
		}
	}
	return "", nil
}

func isExecutableFile(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return false
	}
	return fi.Mode()&0o111 != 0
}
