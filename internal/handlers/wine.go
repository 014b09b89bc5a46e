package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gravitational/trace"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/config"
	"github.com/tpt-project/tpt/internal/desktopfile"
	"github.com/tpt-project/tpt/internal/sysexec"
	"github.com/tpt-project/tpt/internal/tpterr"
)

// winePrefixFor returns the per-app WINEPREFIX directory for name.
func winePrefixFor(cfg *config.Config, name string) string {
	return filepath.Join(cfg.DirWinePrefixes, name)
}

// writeWineLauncher generates the shell launcher at
// <exec_root>/<name> that re-exports WINEPREFIX and invokes the in-prefix
// executable path, shared by ExeHandler and MsiHandler.
func writeWineLauncher(name, prefix, execPathInPrefix string) (string, error) {
	launcherPath := filepath.Join(config.DirEjecutablesRoot, name)
	script := fmt.Sprintf("#!/bin/sh\nexport WINEPREFIX=%q\nexec wine %q \"$@\"\n", prefix, filepath.Join(prefix, "drive_c", execPathInPrefix))
	if err := os.WriteFile(launcherPath, []byte(script), 0o755); err != nil {
		return "", trace.Wrap(err)
	}
	return launcherPath, nil
}

func bootPrefix(ctx context.Context, env *Env, prefix string) error {
	if _, ok := env.Exec.CheckDependency("wine"); !ok {
		return tpterr.NewCritical("wine not found in PATH")
	}
	if err := os.MkdirAll(prefix, 0o755); err != nil {
		return trace.Wrap(err)
	}
	env_ := []string{"WINEPREFIX=" + prefix}
	_, err := env.Exec.Execute(ctx, []string{"wineboot", "-u"}, sysexec.Options{Env: append(os.Environ(), env_...), StreamOutput: true})
	return err
}

// ExeHandler installs Windows .exe installers into a per-app Wine prefix.
// Grounded on tpt_project/handlers/exe_handler.py.
type ExeHandler struct{}

func (h *ExeHandler) Tag() tpt.HandlerTag { return tpt.HandlerExe }

func (h *ExeHandler) Install(ctx context.Context, env *Env, d tpt.Descriptor, tempFile string) (tpt.InstallationDetails, error) {
	prefix := winePrefixFor(env.Config, d.Name)
	if err := bootPrefix(ctx, env, prefix); err != nil {
		return tpt.InstallationDetails{}, err
	}

	argv := []string{"wine", tempFile}
	if d.Metadata.SilentInstallFlags != "" {
		argv = append(argv, d.Metadata.SilentInstallFlags)
	}
	if _, err := env.Exec.Execute(ctx, argv, sysexec.Options{Env: append(os.Environ(), "WINEPREFIX="+prefix), StreamOutput: true}); err != nil {
		return tpt.InstallationDetails{}, err
	}

	launcher, err := writeWineLauncher(d.Name, prefix, d.Metadata.ExecutablePathInPrefix)
	if err != nil {
		return tpt.InstallationDetails{}, err
	}
	desktopPath, err := writeDesktop(config.DirAplicacionesRoot, d, launcher)
	if err != nil {
		return tpt.InstallationDetails{}, err
	}

	return tpt.InstallationDetails{
		Handler:      tpt.HandlerExe,
		WinePrefix:   prefix,
		LauncherPath: launcher,
		DesktopFile:  desktopPath,
	}, nil
}

func (h *ExeHandler) Uninstall(ctx context.Context, env *Env, details tpt.InstallationDetails) error {
	return uninstallWine(details)
}

func uninstallWine(details tpt.InstallationDetails) error {
	if err := os.RemoveAll(details.WinePrefix); err != nil {
		return trace.Wrap(err)
	}
	if err := removeIfExists(details.LauncherPath); err != nil {
		return trace.Wrap(err)
	}
	return desktopfile.Remove(details.DesktopFile)
}

// MsiHandler installs Windows .msi installers via wine msiexec. Grounded on
// tpt_project/handlers/msi_handler.py.
type MsiHandler struct{}

func (h *MsiHandler) Tag() tpt.HandlerTag { return tpt.HandlerMsi }

func (h *MsiHandler) Install(ctx context.Context, env *Env, d tpt.Descriptor, tempFile string) (tpt.InstallationDetails, error) {
	prefix := winePrefixFor(env.Config, d.Name)
	if err := bootPrefix(ctx, env, prefix); err != nil {
		return tpt.InstallationDetails{}, err
	}

	flags := d.Metadata.SilentInstallFlags
	if flags == "" {
		flags = "/qn"
	}
	argv := []string{"wine", "msiexec", "/i", tempFile, flags}
	if _, err := env.Exec.Execute(ctx, argv, sysexec.Options{Env: append(os.Environ(), "WINEPREFIX="+prefix), StreamOutput: true}); err != nil {
		return tpt.InstallationDetails{}, err
	}

	launcher, err := writeWineLauncher(d.Name, prefix, d.Metadata.ExecutablePathInPrefix)
	if err != nil {
		return tpt.InstallationDetails{}, err
	}
	desktopPath, err := writeDesktop(config.DirAplicacionesRoot, d, launcher)
	if err != nil {
		return tpt.InstallationDetails{}, err
	}

	return tpt.InstallationDetails{
		Handler:      tpt.HandlerMsi,
		WinePrefix:   prefix,
		LauncherPath: launcher,
		DesktopFile:  desktopPath,
	}, nil
}

func (h *MsiHandler) Uninstall(ctx context.Context, env *Env, details tpt.InstallationDetails) error {
	return uninstallWine(details)
}
