package handlers

import (
	"context"
	"strings"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/sysexec"
)

// DebXzHandler runs unxz to produce a .deb and delegates to DebHandler; the
// resulting installation_details carry the DebHandler tag so uninstall
// routes there. Grounded on tpt_project/handlers/deb_xz_handler.py.
type DebXzHandler struct{}

func (h *DebXzHandler) Tag() tpt.HandlerTag { return tpt.HandlerDeb }

func (h *DebXzHandler) Install(ctx context.Context, env *Env, d tpt.Descriptor, tempFile string) (tpt.InstallationDetails, error) {
	debPath := strings.TrimSuffix(tempFile, ".xz")
	if _, err := env.Exec.Execute(ctx, []string{"unxz", "-k", "-f", tempFile}, sysexec.Options{}); err != nil {
		return tpt.InstallationDetails{}, err
	}
	deb := &DebHandler{}
	return deb.Install(ctx, env, d, debPath)
}

func (h *DebXzHandler) Uninstall(ctx context.Context, env *Env, details tpt.InstallationDetails) error {
	deb := &DebHandler{}
	return deb.Uninstall(ctx, env, details)
}
