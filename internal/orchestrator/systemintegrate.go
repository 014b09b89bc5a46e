package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gravitational/trace"

	"github.com/tpt-project/tpt/internal/aadpo"
	"github.com/tpt-project/tpt/internal/sysexec"
)

const systemdUnitPath = "/etc/systemd/system/tpt-aadpo.service"

const systemdUnitTemplate = `[Unit]
Description=Apply staged TPT updates before shutdown
DefaultDependencies=no
Before=shutdown.target reboot.target halt.target kexec.target

[Service]
Type=oneshot
RemainAfterExit=true
ExecStart=/bin/true
ExecStop=%s
TimeoutStopSec=900

[Install]
WantedBy=shutdown.target reboot.target halt.target kexec.target
`

// SystemIntegrateInstall writes the tpt-aadpo.service unit (spec.md §4.8),
// then reloads and enables it.
func (pm *PackageManager) SystemIntegrateInstall(ctx context.Context, applierPath string) error {
	unit := fmt.Sprintf(systemdUnitTemplate, applierPath)
	if err := os.WriteFile(systemdUnitPath, []byte(unit), 0o644); err != nil {
		return trace.Wrap(err)
	}
	if _, err := pm.Exec.Execute(ctx, []string{"systemctl", "daemon-reload"}, sysexec.Options{AsRoot: true}); err != nil {
		return err
	}
	if _, err := pm.Exec.Execute(ctx, []string{"systemctl", "enable", "tpt-aadpo.service"}, sysexec.Options{AsRoot: true}); err != nil {
		return err
	}
	return nil
}

// SystemIntegrateUninstall reverses SystemIntegrateInstall.
func (pm *PackageManager) SystemIntegrateUninstall(ctx context.Context) error {
	if _, err := pm.Exec.Execute(ctx, []string{"systemctl", "disable", "tpt-aadpo.service"}, sysexec.Options{AsRoot: true}); err != nil {
		pm.Logger.Warning("systemctl disable tpt-aadpo.service: %v", err)
	}
	if err := os.Remove(systemdUnitPath); err != nil && !os.IsNotExist(err) {
		return trace.Wrap(err)
	}
	if _, err := pm.Exec.Execute(ctx, []string{"systemctl", "daemon-reload"}, sysexec.Options{AsRoot: true}); err != nil {
		return err
	}
	return nil
}

// AADPOStatus reports whether an AADPO manifest is currently staged and, if
// so, how many actions it carries.
type AADPOStatus struct {
	Staged       bool
	ActionCount  int
	ManifestPath string
}

// GetAADPOStatus inspects <staging>/aadpo_manifest.json.
func (pm *PackageManager) GetAADPOStatus(ctx context.Context) (AADPOStatus, error) {
	path := filepath.Join(pm.Config.DirStaging, "aadpo_manifest.json")
	manifest, err := aadpo.LoadManifest(path)
	if err != nil {
		if os.IsNotExist(err) {
			return AADPOStatus{ManifestPath: path}, nil
		}
		return AADPOStatus{}, trace.Wrap(err)
	}
	return AADPOStatus{Staged: true, ActionCount: len(manifest.Actions), ManifestPath: path}, nil
}

// FixBroken runs the maintenance pair named in SPEC_FULL.md §4's supplement
// ("tpt fix-broken"): a repair attempt for a system left mid-dpkg-transaction.
func (pm *PackageManager) FixBroken(ctx context.Context) error {
	if _, err := pm.Exec.Execute(ctx, []string{"apt-get", "install", "-f", "-y"}, sysexec.Options{AsRoot: true, StreamOutput: true}); err != nil {
		pm.Logger.Warning("apt-get install -f -y failed: %v", err)
	}
	_, err := pm.Exec.Execute(ctx, []string{"dpkg", "--configure", "-a"}, sysexec.Options{AsRoot: true, StreamOutput: true})
	return err
}
