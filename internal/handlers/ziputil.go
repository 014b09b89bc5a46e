package handlers

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gravitational/trace"
)

// extractZip unpacks every entry of zipPath into destDir. Used by
// NemasPatchZipHandler and MetaZipHandler. archive/zip is stdlib: there is
// no third-party zip reader anywhere in the pack, and the format needs no
// streaming or compression tuning beyond what the standard implementation
// already gives.
func extractZip(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return trace.Wrap(err)
	}
	defer r.Close()

	for _, f := range r.File {
		name := filepath.ToSlash(f.Name)
		if strings.HasPrefix(name, "/") || strings.Contains(name, "..") {
			return trace.BadParameter("zip entry escapes destination: %s", f.Name)
		}
		target := filepath.Join(destDir, name)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return trace.Wrap(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return trace.Wrap(err)
		}

		rc, err := f.Open()
		if err != nil {
			return trace.Wrap(err)
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, f.Mode())
		if err != nil {
			rc.Close()
			return trace.Wrap(err)
		}
		_, copyErr := io.Copy(out, rc)
		rc.Close()
		closeErr := out.Close()
		if copyErr != nil {
			return trace.Wrap(copyErr)
		}
		if closeErr != nil {
			return trace.Wrap(closeErr)
		}
	}
	return nil
}

// findAnyExecutable walks destDir and returns the first file with an
// executable bit set, preferring the shallowest match.
func findAnyExecutable(destDir string) (string, error) {
	var best string
	var bestDepth = -1
	err := filepath.Walk(destDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if info.Mode()&0o111 == 0 {
			return nil
		}
		depth := strings.Count(strings.TrimPrefix(path, destDir), string(filepath.Separator))
		if bestDepth == -1 || depth < bestDepth {
			best, bestDepth = path, depth
		}
		return nil
	})
	if err != nil {
		return "", trace.Wrap(err)
	}
	return best, nil
}
