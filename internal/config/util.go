package config

import (
	"strings"

	"github.com/google/renameio"
)

func splitLines(s string) []string {
	return strings.Split(s, "\n")
}

func trimSpace(s string) string {
	return strings.TrimSpace(s)
}

// atomicWrite writes b to path via a sibling temp file + rename, the same
// pattern the teacher uses in cmd/distri/install.go for in-prefix file
// installs and that spec.md §4.7/§3 require for the installed-DB and AADPO
// manifest.
func atomicWrite(path string, b []byte) error {
	return renameio.WriteFile(path, b, 0o644)
}
