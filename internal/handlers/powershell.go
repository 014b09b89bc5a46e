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
	"github.com/tpt-project/tpt/internal/tpterr"
)

const powershellScriptsRoot = "/opt/tpt_ps1_scripts"

// PowershellHandler installs .ps1 scripts under PowerShell Core. Grounded on
// tpt_project/handlers/powershell_handler.py.
type PowershellHandler struct{}

func (h *PowershellHandler) Tag() tpt.HandlerTag { return tpt.HandlerPowershell }

func (h *PowershellHandler) Install(ctx context.Context, env *Env, d tpt.Descriptor, tempFile string) (tpt.InstallationDetails, error) {
	if _, ok := env.Exec.CheckDependency("pwsh"); !ok {
		return tpt.InstallationDetails{}, tpterr.NewCritical("pwsh not found in PATH")
	}

	destDir := filepath.Join(powershellScriptsRoot, d.Name)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return tpt.InstallationDetails{}, trace.Wrap(err)
	}
	scriptPath := filepath.Join(destDir, filepath.Base(tempFile))
	if err := moveFile(tempFile, scriptPath); err != nil {
		return tpt.InstallationDetails{}, err
	}

	launcherPath := filepath.Join(config.DirEjecutablesRoot, d.Name)
	script := fmt.Sprintf("#!/bin/sh\nexec pwsh %q \"$@\"\n", scriptPath)
	if err := os.WriteFile(launcherPath, []byte(script), 0o755); err != nil {
		return tpt.InstallationDetails{}, trace.Wrap(err)
	}

	desktopPath, err := writeDesktop(config.DirAplicacionesRoot, d, launcherPath)
	if err != nil {
		return tpt.InstallationDetails{}, err
	}

	return tpt.InstallationDetails{
		Handler:      tpt.HandlerPowershell,
		InstallPath:  destDir,
		LauncherPath: launcherPath,
		DesktopFile:  desktopPath,
	}, nil
}

func (h *PowershellHandler) Uninstall(ctx context.Context, env *Env, details tpt.InstallationDetails) error {
	if err := os.RemoveAll(details.InstallPath); err != nil {
		return trace.Wrap(err)
	}
	if err := removeIfExists(details.LauncherPath); err != nil {
		return trace.Wrap(err)
	}
	return desktopfile.Remove(details.DesktopFile)
}
