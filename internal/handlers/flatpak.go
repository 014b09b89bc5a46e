package handlers

import (
	"context"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/sysexec"
	"github.com/tpt-project/tpt/internal/tpterr"
)

const defaultFlatpakRemote = "flathub"

// FlatpakHandler installs Flatpak apps by app ID. Grounded on
// tpt_project/handlers/flatpak_handler.py.
type FlatpakHandler struct{}

func (h *FlatpakHandler) Tag() tpt.HandlerTag { return tpt.HandlerFlatpak }

func (h *FlatpakHandler) Install(ctx context.Context, env *Env, d tpt.Descriptor, tempFile string) (tpt.InstallationDetails, error) {
	if _, ok := env.Exec.CheckDependency("flatpak"); !ok {
		return tpt.InstallationDetails{}, tpterr.NewCritical("flatpak not found in PATH")
	}
	if d.Metadata.AppID == "" {
		return tpt.InstallationDetails{}, tpterr.NewVerification("flatpak descriptor missing metadata.app_id")
	}
	remote := d.Metadata.Remote
	if remote == "" {
		remote = defaultFlatpakRemote
	}

	_, err := env.Exec.Execute(ctx, []string{"flatpak", "install", "--user", "--noninteractive", remote, d.Metadata.AppID}, sysexec.Options{StreamOutput: true})
	if err != nil {
		return tpt.InstallationDetails{}, err
	}
	return tpt.InstallationDetails{
		Handler: tpt.HandlerFlatpak,
		AppID:   d.Metadata.AppID,
	}, nil
}

func (h *FlatpakHandler) Uninstall(ctx context.Context, env *Env, details tpt.InstallationDetails) error {
	_, err := env.Exec.Execute(ctx, []string{"flatpak", "uninstall", "--user", "--noninteractive", details.AppID}, sysexec.Options{StreamOutput: true})
	return err
}
