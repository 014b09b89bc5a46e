// Package desktopfile writes and removes .desktop entries under
// DIR_APLICACIONES_ROOT. Grounded on the original tpt_original.py's
// crear_desktop_file.
package desktopfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gravitational/trace"
)

const defaultIcon = "application-x-executable"
const defaultCategories = "Utility;"

// Spec describes one desktop entry to write.
type Spec struct {
	Name        string
	Comment     string // descriptor.Description
	ExecPath    string // absolute path to the installed executable/launcher
	Icon        string // metadata.icon, or defaultIcon
	Terminal    bool
	Categories  string // metadata.categories, or defaultCategories
}

// Write renders Spec into root/<name>.desktop and returns the path it wrote.
func Write(root string, s Spec) (string, error) {
	icon := s.Icon
	if icon == "" {
		icon = defaultIcon
	}
	categories := s.Categories
	if categories == "" {
		categories = defaultCategories
	}

	content := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Comment=%s
Exec=%s
Icon=%s
Terminal=%t
Categories=%s
`, s.Name, s.Comment, s.ExecPath, icon, s.Terminal, categories)

	path := filepath.Join(root, s.Name+".desktop")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", trace.Wrap(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", trace.Wrap(err)
	}
	return path, nil
}

// Remove deletes the desktop entry at path. A missing file is not an error.
func Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return trace.Wrap(err)
	}
	return nil
}
