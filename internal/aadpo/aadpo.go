// Package aadpo implements spec.md §4.9: the staged-update applier
// contract run at shutdown by the external tpt-apply-updates binary. It
// depends only on the shared manifest type and narrow interfaces the
// orchestrator satisfies, so neither package imports the other.
// Grounded on the original tpt_original.py's aplicar_actualizaciones_
// diferidas, reimplemented as the teacher-style small-interface Go
// collaborator pattern (cmd/distri-installer talking to internal/install
// through a narrow contract rather than a concrete type).
package aadpo

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gravitational/trace"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/tptlog"
)

// PackageInstaller is the subset of the orchestrator's PackageManager the
// applier needs for "install_tpt" actions.
type PackageInstaller interface {
	InstallFromStagedFile(ctx context.Context, name, stagedFile string) (tpt.InstalledRecord, error)
}

// SystemUpdater is the subset of the orchestrator's PackageManager the
// applier needs for "sys_update" actions.
type SystemUpdater interface {
	RunSystemUpdate(ctx context.Context, manager tpt.SysManager) error
}

// LoadManifest reads and parses the AADPO manifest at path.
func LoadManifest(path string) (*tpt.AADPOManifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m tpt.AADPOManifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, trace.Wrap(err)
	}
	return &m, nil
}

// SaveManifest atomically-enough persists m at path (plain WriteFile: the
// manifest is write-once per upgrade cycle, not subject to concurrent
// writers the way installed.json is).
func SaveManifest(path string, m tpt.AADPOManifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return trace.Wrap(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return trace.Wrap(err)
	}
	return os.WriteFile(path, b, 0o644)
}

// Applier applies a staged AADPO manifest, per spec.md §4.9: each
// install_tpt action is installed from its staged file, each sys_update
// action runs the corresponding manager's upgrade. Partial failures are
// logged and leave the manifest in place for the next shutdown; on overall
// success the manifest and staged files are deleted.
type Applier struct {
	Installer       PackageInstaller
	Updater         SystemUpdater
	Logger          *tptlog.Logger
	ManifestPath    string
	StagingFilesDir string
}

// Apply runs every staged action. A missing manifest is not an error: there
// is simply nothing to apply.
func (a *Applier) Apply(ctx context.Context) error {
	manifest, err := LoadManifest(a.ManifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return trace.Wrap(err)
	}

	var anyFailed bool
	for _, action := range manifest.Actions {
		switch action.Action {
		case tpt.AADPOInstallTPT:
			if _, err := a.Installer.InstallFromStagedFile(ctx, action.Name, action.File); err != nil {
				a.Logger.Warning("AADPO install of %s failed: %v", action.Name, err)
				anyFailed = true
			}
		case tpt.AADPOSysUpdate:
			if err := a.Updater.RunSystemUpdate(ctx, action.Manager); err != nil {
				a.Logger.Warning("AADPO system update via %s failed: %v", action.Manager, err)
				anyFailed = true
			}
		default:
			a.Logger.Warning("AADPO manifest has unrecognized action %q", action.Action)
			anyFailed = true
		}
	}

	if anyFailed {
		return trace.BadParameter("one or more AADPO actions failed; manifest retained for next shutdown")
	}

	if err := os.Remove(a.ManifestPath); err != nil && !os.IsNotExist(err) {
		a.Logger.Warning("removing AADPO manifest: %v", err)
	}
	if a.StagingFilesDir != "" {
		if err := os.RemoveAll(a.StagingFilesDir); err != nil {
			a.Logger.Warning("cleaning staged files: %v", err)
		}
	}
	return nil
}
