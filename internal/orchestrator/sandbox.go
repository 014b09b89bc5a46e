package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/sandbox"
	"github.com/tpt-project/tpt/internal/sysexec"
	"github.com/tpt-project/tpt/internal/tpterr"
)

// InstallSandboxed resolves name the normal way but performs the actual
// install inside a throwaway LXC container instead of the host, per
// SPEC_FULL.md §4's sandboxed-install supplement. Only the formats whose
// install is a single native package-manager invocation are supported
// (deb, deb.xz, rpm, alpine apk); anything else returns
// UnsupportedFormatError, since there is no host-analog "run this inside a
// container" step for handlers that build shell launchers or symlink farms
// outside the package-manager sense.
func (pm *PackageManager) InstallSandboxed(ctx context.Context, name, source string) (tpt.InstalledRecord, error) {
	d, err := pm.Resolver.ResolveForInstall(ctx, name, source)
	if err != nil {
		return tpt.InstalledRecord{}, err
	}

	argv, ok := sandboxInstallCommand(d)
	if !ok {
		return tpt.InstalledRecord{}, tpterr.NewUnsupportedFormat(string(d.Format) + " (sandboxed install)")
	}

	file, cleanup, err := pm.materialize(ctx, d)
	if err != nil {
		return tpt.InstalledRecord{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	if d.Format == tpt.FormatDebXz {
		if _, err := pm.Exec.Execute(ctx, []string{"unxz", "-k", "-f", file}, sysexec.Options{}); err != nil {
			return tpt.InstalledRecord{}, err
		}
		file = strings.TrimSuffix(file, ".xz")
		defer os.Remove(file)
	}

	sb := sandbox.New(pm.Exec)
	containerName, err := sb.Create(ctx, d.Name)
	if err != nil {
		return tpt.InstalledRecord{}, err
	}

	containerFile := "/root/" + filepath.Base(file)
	if err := sb.CopyIn(ctx, containerName, file, "root/"+filepath.Base(file)); err != nil {
		_ = sb.Destroy(ctx, containerName)
		return tpt.InstalledRecord{}, err
	}

	if err := sb.Run(ctx, containerName, substitutePackagePath(argv, containerFile)); err != nil {
		_ = sb.Destroy(ctx, containerName)
		return tpt.InstalledRecord{}, err
	}

	record := tpt.InstalledRecord{
		Version: d.Version,
		Source:  d.Source,
		InstallationDetails: tpt.InstallationDetails{
			Handler:     handlerTagFor(d.Format),
			PackageName: d.Name,
			Sandbox:     true,
			SandboxName: containerName,
		},
	}
	if err := pm.DB.Save(d.Name, record); err != nil {
		return tpt.InstalledRecord{}, err
	}
	return record, nil
}

// UninstallSandboxed routes the remove command back into the container
// before destroying it, per SPEC_FULL.md §4.
func (pm *PackageManager) UninstallSandboxed(ctx context.Context, name string) error {
	record, ok := pm.DB.Get(name)
	if !ok || !record.InstallationDetails.Sandbox {
		return tpterr.NewPackageNotFound(name)
	}
	sb := sandbox.New(pm.Exec)
	argv := sandboxUninstallCommand(record.InstallationDetails.Handler, record.InstallationDetails.PackageName)
	if argv != nil {
		if err := sb.Run(ctx, record.InstallationDetails.SandboxName, argv); err != nil {
			pm.Logger.Warning("sandboxed uninstall of %s failed: %v", name, err)
		}
	}
	if err := sb.Destroy(ctx, record.InstallationDetails.SandboxName); err != nil {
		return err
	}
	return pm.DB.Remove(name)
}

func sandboxInstallCommand(d tpt.Descriptor) ([]string, bool) {
	switch d.Format {
	case tpt.FormatDeb, tpt.FormatDebXz:
		return []string{"dpkg", "-i", "__PKG__"}, true
	case tpt.FormatRpm:
		return []string{"rpm", "-i", "__PKG__"}, true
	case tpt.FormatAlpineApk:
		return []string{"apk", "add", "--allow-untrusted", "__PKG__"}, true
	default:
		return nil, false
	}
}

func substitutePackagePath(argv []string, path string) []string {
	out := make([]string, len(argv))
	for i, a := range argv {
		if a == "__PKG__" {
			out[i] = path
			continue
		}
		out[i] = a
	}
	return out
}

func handlerTagFor(format tpt.Format) tpt.HandlerTag {
	switch format {
	case tpt.FormatDeb, tpt.FormatDebXz:
		return tpt.HandlerDeb
	case tpt.FormatRpm:
		return tpt.HandlerRpm
	case tpt.FormatAlpineApk:
		return tpt.HandlerAlpineApk
	default:
		return ""
	}
}

func sandboxUninstallCommand(tag tpt.HandlerTag, packageName string) []string {
	switch tag {
	case tpt.HandlerDeb:
		return []string{"dpkg", "-P", packageName}
	case tpt.HandlerRpm:
		return []string{"rpm", "-e", packageName}
	case tpt.HandlerAlpineApk:
		return []string{"apk", "del", packageName}
	default:
		return nil
	}
}
