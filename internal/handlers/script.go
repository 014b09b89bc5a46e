package handlers

import (
	"context"

	"github.com/gravitational/trace"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/config"
	"github.com/tpt-project/tpt/internal/desktopfile"
)

// ScriptHandler installs .sh/.py scripts by moving them into the executable
// root and marking them executable. Grounded on
// tpt_project/handlers/base_handler.py's instalar_paquete move+chmod path
// (the original routes .sh/.py through the same generic installer).
type ScriptHandler struct{}

func (h *ScriptHandler) Tag() tpt.HandlerTag { return tpt.HandlerScript }

func (h *ScriptHandler) Install(ctx context.Context, env *Env, d tpt.Descriptor, tempFile string) (tpt.InstallationDetails, error) {
	dest := config.DirEjecutablesRoot + "/" + d.Name
	if err := moveFile(tempFile, dest); err != nil {
		return tpt.InstallationDetails{}, trace.Wrap(err)
	}
	if err := chmodExecutable(dest); err != nil {
		return tpt.InstallationDetails{}, trace.Wrap(err)
	}

	details := tpt.InstallationDetails{
		Handler:     tpt.HandlerScript,
		InstallPath: dest,
	}
	if hasDesktopMetadata(d.Metadata) {
		desktopPath, err := writeDesktop(config.DirAplicacionesRoot, d, dest)
		if err != nil {
			return tpt.InstallationDetails{}, trace.Wrap(err)
		}
		details.DesktopFile = desktopPath
	}
	return details, nil
}

func (h *ScriptHandler) Uninstall(ctx context.Context, env *Env, details tpt.InstallationDetails) error {
	if err := removeIfExists(details.InstallPath); err != nil {
		return trace.Wrap(err)
	}
	return desktopfile.Remove(details.DesktopFile)
}
