package handlers

import (
	"context"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/sysexec"
	"github.com/tpt-project/tpt/internal/tpterr"
)

// SnapHandler installs snaps by name, with optional channel/classic.
// Grounded on tpt_project/handlers/snap_handler.py.
type SnapHandler struct{}

func (h *SnapHandler) Tag() tpt.HandlerTag { return tpt.HandlerSnap }

func (h *SnapHandler) Install(ctx context.Context, env *Env, d tpt.Descriptor, tempFile string) (tpt.InstallationDetails, error) {
	if _, ok := env.Exec.CheckDependency("snap"); !ok {
		return tpt.InstallationDetails{}, tpterr.NewCritical("snap not found in PATH")
	}
	if d.Metadata.SnapName == "" {
		return tpt.InstallationDetails{}, tpterr.NewVerification("snap descriptor missing metadata.snap_name")
	}

	argv := []string{"snap", "install"}
	if d.Metadata.Channel != "" {
		argv = append(argv, "--channel", d.Metadata.Channel)
	}
	if d.Metadata.Classic {
		argv = append(argv, "--classic")
	}
	argv = append(argv, d.Metadata.SnapName)

	if _, err := env.Exec.Execute(ctx, argv, sysexec.Options{AsRoot: true, StreamOutput: true}); err != nil {
		return tpt.InstallationDetails{}, err
	}
	return tpt.InstallationDetails{
		Handler:  tpt.HandlerSnap,
		SnapName: d.Metadata.SnapName,
	}, nil
}

func (h *SnapHandler) Uninstall(ctx context.Context, env *Env, details tpt.InstallationDetails) error {
	_, err := env.Exec.Execute(ctx, []string{"snap", "remove", details.SnapName}, sysexec.Options{AsRoot: true, StreamOutput: true})
	return err
}
