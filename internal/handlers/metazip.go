package handlers

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gravitational/trace"

	tpt "github.com/tpt-project/tpt"
)

// metaManifest is the inner manifest.json a meta-zip carries, listing the
// child descriptors it bundles.
type metaManifest struct {
	Packages []metaZipEntry `json:"packages"`
}

// metaZipEntry is one child package entry in a meta-zip's manifest.json. It
// is a Descriptor plus the "file" field naming that child's payload within
// the extracted archive (meta_zip_handler.py: sub_pkg_info.get("file")) —
// a concept specific to meta-zip's inner manifest, not the outer Descriptor
// schema every other resolver/handler uses.
type metaZipEntry struct {
	tpt.Descriptor
	File string `json:"file"`
}

// MetaZipHandler extracts a zip bundling several independent descriptors
// behind one package name, installing and uninstalling each child through
// the orchestrator's normal local-file path via Env.Installer/Uninstaller.
// Grounded on tpt_project/handlers/meta_zip_handler.py.
type MetaZipHandler struct{}

func (h *MetaZipHandler) Tag() tpt.HandlerTag { return tpt.HandlerMetaZip }

func (h *MetaZipHandler) Install(ctx context.Context, env *Env, d tpt.Descriptor, tempFile string) (tpt.InstallationDetails, error) {
	extractDir, err := os.MkdirTemp(env.Config.DirStaging, "meta-zip-*")
	if err != nil {
		return tpt.InstallationDetails{}, trace.Wrap(err)
	}
	defer os.RemoveAll(extractDir)

	if err := extractZip(tempFile, extractDir); err != nil {
		return tpt.InstallationDetails{}, err
	}

	manifestPath := filepath.Join(extractDir, "manifest.json")
	b, err := os.ReadFile(manifestPath)
	if err != nil {
		return tpt.InstallationDetails{}, trace.Wrap(err)
	}
	var mm metaManifest
	if err := json.Unmarshal(b, &mm); err != nil {
		return tpt.InstallationDetails{}, trace.BadParameter("meta zip manifest.json: %v", err)
	}

	var installed []string
	for _, child := range mm.Packages {
		if child.File == "" {
			env.Logger.Warning("meta zip child %s has no \"file\" entry, skipping", child.Name)
			continue
		}
		childFile := filepath.Join(extractDir, child.File)
		if _, statErr := os.Stat(childFile); statErr != nil {
			env.Logger.Warning("meta zip child %s: file %q not found in archive, skipping", child.Name, child.File)
			continue
		}
		if _, err := env.Installer(ctx, child.Descriptor, childFile); err != nil {
			return tpt.InstallationDetails{
				Handler:              tpt.HandlerMetaZip,
				InstalledSubPackages: installed,
			}, err
		}
		installed = append(installed, child.Name)
	}

	return tpt.InstallationDetails{
		Handler:              tpt.HandlerMetaZip,
		InstalledSubPackages: installed,
	}, nil
}

func (h *MetaZipHandler) Uninstall(ctx context.Context, env *Env, details tpt.InstallationDetails) error {
	var firstErr error
	for _, name := range details.InstalledSubPackages {
		if err := env.Uninstaller(ctx, name); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
