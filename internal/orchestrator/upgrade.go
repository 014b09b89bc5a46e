package orchestrator

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/gravitational/trace"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/aadpo"
	"github.com/tpt-project/tpt/internal/sysexec"
)

// TPTUpdate is one outdated TPT-managed package discovered by Upgrade.
type TPTUpdate struct {
	Name      string
	Installed string
	Latest    tpt.Descriptor
}

// UpgradeReport summarizes what Upgrade found (and, when no_apply is set,
// staged).
type UpgradeReport struct {
	TPTUpdates     []TPTUpdate
	SystemManagers []tpt.SysManager
	Staged         bool
}

// Upgrade implements spec.md §4.8's upgrade flow. When noApply is true it
// stages an AADPO manifest for the next shutdown instead of applying
// anything now.
func (pm *PackageManager) Upgrade(ctx context.Context, noApply bool) (UpgradeReport, error) {
	updates, err := pm.collectTPTUpdates(ctx)
	if err != nil {
		return UpgradeReport{}, err
	}
	managers := pm.collectSystemManagers()

	report := UpgradeReport{TPTUpdates: updates, SystemManagers: managers}

	if noApply {
		if err := pm.stageAADPO(ctx, updates, managers); err != nil {
			return report, err
		}
		report.Staged = true
		return report, nil
	}

	if _, ok := pm.Exec.CheckDependency("apt-get"); ok {
		if _, err := pm.Exec.Execute(ctx, []string{"apt-get", "update"}, sysexec.Options{AsRoot: true, StreamOutput: true}); err != nil {
			pm.Logger.Warning("apt-get update failed: %v", err)
		}
	}

	for _, u := range updates {
		if _, err := pm.installDescriptor(ctx, u.Latest); err != nil {
			pm.Logger.Warning("upgrading %s: %v", u.Name, err)
		}
	}

	for _, m := range managers {
		if err := pm.RunSystemUpdate(ctx, m); err != nil {
			pm.Logger.Warning("%s update failed: %v", m, err)
		}
	}

	return report, nil
}

// collectTPTUpdates compares every installed record sourced from tpt/tpt-git
// against the latest tpt-source search result, using tpt.CompareVersions.
// Git-clone repos are refreshed (git pull) first so their manifests are
// current, per spec.md §4.8.
func (pm *PackageManager) collectTPTUpdates(ctx context.Context) ([]TPTUpdate, error) {
	pm.refreshGitClones(ctx)

	var updates []TPTUpdate
	for name, record := range pm.DB.All() {
		if record.Source != tpt.SourceTPT && record.Source != tpt.SourceTPTGit {
			continue
		}
		candidates, err := pm.Resolver.Search(ctx, name)
		if err != nil {
			continue
		}
		var latest *tpt.Descriptor
		for i := range candidates {
			c := candidates[i]
			if c.Name != name || (c.Source != tpt.SourceTPT && c.Source != tpt.SourceTPTGit) {
				continue
			}
			if latest == nil || tpt.CompareVersions(c.Version, latest.Version) > 0 {
				latest = &c
			}
		}
		if latest == nil {
			continue
		}
		if tpt.CompareVersions(latest.Version, record.Version) > 0 {
			updates = append(updates, TPTUpdate{Name: name, Installed: record.Version, Latest: *latest})
		}
	}
	return updates, nil
}

// refreshGitClones runs "git pull" (best-effort) in every existing clone
// under DirGitClones.
func (pm *PackageManager) refreshGitClones(ctx context.Context) {
	entries, err := os.ReadDir(pm.Config.DirGitClones)
	if err != nil {
		return
	}
	if _, ok := pm.Exec.CheckDependency("git"); !ok {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(pm.Config.DirGitClones, e.Name())
		if _, err := pm.Exec.Execute(ctx, []string{"git", "pull"}, sysexec.Options{Cwd: dir}); err != nil {
			pm.Logger.Debug("git pull in %s failed: %v", dir, err)
		}
	}
}

func (pm *PackageManager) collectSystemManagers() []tpt.SysManager {
	var out []tpt.SysManager
	if _, ok := pm.Exec.CheckDependency("apt-get"); ok {
		out = append(out, tpt.SysManagerAPT)
	}
	if _, ok := pm.Exec.CheckDependency("flatpak"); ok {
		out = append(out, tpt.SysManagerFlatpak)
	}
	if _, ok := pm.Exec.CheckDependency("snap"); ok {
		out = append(out, tpt.SysManagerSnap)
	}
	return out
}

// RunSystemUpdate drives one native manager's full upgrade/update/refresh.
// Exported so the AADPO applier (internal/aadpo) can invoke it for
// "sys_update" actions without importing the orchestrator package back.
func (pm *PackageManager) RunSystemUpdate(ctx context.Context, manager tpt.SysManager) error {
	var argv []string
	switch manager {
	case tpt.SysManagerAPT:
		if _, err := pm.Exec.Execute(ctx, []string{"apt-get", "upgrade", "-y"}, sysexec.Options{AsRoot: true, StreamOutput: true}); err != nil {
			return err
		}
		argv = []string{"apt-get", "autoclean", "-y"}
	case tpt.SysManagerFlatpak:
		argv = []string{"flatpak", "update", "-y"}
	case tpt.SysManagerSnap:
		argv = []string{"snap", "refresh"}
	default:
		return nil
	}
	_, err := pm.Exec.Execute(ctx, argv, sysexec.Options{AsRoot: manager == tpt.SysManagerAPT, StreamOutput: true})
	return err
}

// stageAADPO pre-downloads each TPT update into <staging>/files/ and writes
// the AADPO manifest the applier will consume at shutdown, per spec.md
// §4.8 step 3.
func (pm *PackageManager) stageAADPO(ctx context.Context, updates []TPTUpdate, managers []tpt.SysManager) error {
	manifest := tpt.AADPOManifest{}

	for _, u := range updates {
		file, cleanup, err := pm.materialize(ctx, u.Latest)
		if err != nil {
			pm.Logger.Warning("staging update for %s: %v", u.Name, err)
			continue
		}
		stagedName := u.Name + fileSuffixFor(u.Latest)
		dest := filepath.Join(pm.Config.DirStaging, "files", stagedName)
		if file != dest {
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return trace.Wrap(err)
			}
			if err := copyFile(file, dest); err != nil {
				return trace.Wrap(err)
			}
			if cleanup != nil {
				cleanup()
			}
		}
		manifest.Actions = append(manifest.Actions, tpt.AADPOAction{
			Action: tpt.AADPOInstallTPT,
			Name:   u.Name,
			File:   stagedName,
		})
	}

	for _, m := range managers {
		manifest.Actions = append(manifest.Actions, tpt.AADPOAction{
			Action:  tpt.AADPOSysUpdate,
			Manager: m,
		})
	}

	path := filepath.Join(pm.Config.DirStaging, "aadpo_manifest.json")
	return aadpo.SaveManifest(path, manifest)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return trace.Wrap(err)
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return trace.Wrap(err)
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return trace.Wrap(err)
}
