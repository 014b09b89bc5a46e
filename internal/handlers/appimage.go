package handlers

import (
	"context"
	"path/filepath"

	"github.com/gravitational/trace"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/config"
	"github.com/tpt-project/tpt/internal/desktopfile"
)

// AppImageHandler installs .AppImage binaries under /opt/AppImages and
// symlinks them into the executable root. Grounded on
// tpt_project/handlers/appimage_handler.py.
type AppImageHandler struct{}

func (h *AppImageHandler) Tag() tpt.HandlerTag { return tpt.HandlerAppImage }

func (h *AppImageHandler) Install(ctx context.Context, env *Env, d tpt.Descriptor, tempFile string) (tpt.InstallationDetails, error) {
	dest := filepath.Join(config.DirOptRoot, "AppImages", d.Name+".AppImage")
	if err := moveFile(tempFile, dest); err != nil {
		return tpt.InstallationDetails{}, trace.Wrap(err)
	}
	if err := chmodExecutable(dest); err != nil {
		return tpt.InstallationDetails{}, trace.Wrap(err)
	}

	link := filepath.Join(config.DirEjecutablesRoot, d.Name)
	if err := replaceSymlink(dest, link); err != nil {
		return tpt.InstallationDetails{}, trace.Wrap(err)
	}

	desktopPath, err := writeDesktop(config.DirAplicacionesRoot, d, link)
	if err != nil {
		return tpt.InstallationDetails{}, trace.Wrap(err)
	}

	return tpt.InstallationDetails{
		Handler:     tpt.HandlerAppImage,
		InstallPath: dest,
		SymlinkPath: link,
		DesktopFile: desktopPath,
	}, nil
}

func (h *AppImageHandler) Uninstall(ctx context.Context, env *Env, details tpt.InstallationDetails) error {
	if err := removeIfExists(details.InstallPath); err != nil {
		return trace.Wrap(err)
	}
	if err := removeIfExists(details.SymlinkPath); err != nil {
		return trace.Wrap(err)
	}
	return desktopfile.Remove(details.DesktopFile)
}
