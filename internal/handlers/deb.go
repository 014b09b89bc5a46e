package handlers

import (
	"context"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/sysexec"
)

// DebHandler installs .deb files via dpkg, repairing dependencies with
// apt-get on failure. Grounded on tpt_project/handlers/deb_handler.py.
type DebHandler struct{}

func (h *DebHandler) Tag() tpt.HandlerTag { return tpt.HandlerDeb }

func (h *DebHandler) Install(ctx context.Context, env *Env, d tpt.Descriptor, tempFile string) (tpt.InstallationDetails, error) {
	_, err := env.Exec.Execute(ctx, []string{"dpkg", "-i", tempFile}, sysexec.Options{AsRoot: true, StreamOutput: true})
	if err != nil {
		// One reparative attempt, per spec.md §7 propagation policy.
		if _, fixErr := env.Exec.Execute(ctx, []string{"apt-get", "install", "-f", "-y"}, sysexec.Options{AsRoot: true, StreamOutput: true}); fixErr != nil {
			return tpt.InstallationDetails{}, err
		}
	}
	return tpt.InstallationDetails{
		Handler:     tpt.HandlerDeb,
		PackageName: d.Name,
	}, nil
}

func (h *DebHandler) Uninstall(ctx context.Context, env *Env, details tpt.InstallationDetails) error {
	_, err := env.Exec.Execute(ctx, []string{"dpkg", "-P", details.PackageName}, sysexec.Options{AsRoot: true, StreamOutput: true})
	return err
}
