package handlers

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gravitational/trace"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/sysexec"
	"github.com/tpt-project/tpt/internal/tpterr"
)

// NemasPatchZipHandler extracts a zip containing a one-shot patcher, runs
// whatever executable it finds as root from the extraction directory, and
// records only the timestamp the patch was applied. There is nothing to
// undo: uninstall logs a warning and succeeds. Grounded on
// tpt_project/handlers/nemas_patch_zip_handler.py, the original's one
// format with no reverse operation.
type NemasPatchZipHandler struct{}

func (h *NemasPatchZipHandler) Tag() tpt.HandlerTag { return tpt.HandlerNemasPatchZip }

func (h *NemasPatchZipHandler) Install(ctx context.Context, env *Env, d tpt.Descriptor, tempFile string) (tpt.InstallationDetails, error) {
	extractDir, err := os.MkdirTemp(env.Config.DirStaging, "nemas-patch-*")
	if err != nil {
		return tpt.InstallationDetails{}, trace.Wrap(err)
	}
	defer os.RemoveAll(extractDir)

	if err := extractZip(tempFile, extractDir); err != nil {
		return tpt.InstallationDetails{}, err
	}

	exe, err := findAnyExecutable(extractDir)
	if err != nil {
		return tpt.InstallationDetails{}, err
	}
	if exe == "" {
		return tpt.InstallationDetails{}, tpterr.NewVerification("no executable found inside nemas patch archive")
	}
	if err := os.Chmod(exe, 0o755); err != nil {
		return tpt.InstallationDetails{}, trace.Wrap(err)
	}

	if _, err := env.Exec.Execute(ctx, []string{exe}, sysexec.Options{AsRoot: true, StreamOutput: true, Cwd: filepath.Dir(exe)}); err != nil {
		return tpt.InstallationDetails{}, err
	}

	return tpt.InstallationDetails{
		Handler:   tpt.HandlerNemasPatchZip,
		AppliedOn: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *NemasPatchZipHandler) Uninstall(ctx context.Context, env *Env, details tpt.InstallationDetails) error {
	env.Logger.Warning("nemas patch applied on %s cannot be reversed; leaving system state as-is", details.AppliedOn)
	return nil
}
