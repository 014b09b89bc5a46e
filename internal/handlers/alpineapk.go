package handlers

import (
	"context"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/sysexec"
	"github.com/tpt-project/tpt/internal/tpterr"
)

const alpineReleaseFile = "/etc/alpine-release"

// AlpineApkHandler installs packages via Alpine's apk, gated by presence of
// /etc/alpine-release. Grounded on
// tpt_project/handlers/alpine_apk_handler.py.
type AlpineApkHandler struct{}

func (h *AlpineApkHandler) Tag() tpt.HandlerTag { return tpt.HandlerAlpineApk }

func (h *AlpineApkHandler) Install(ctx context.Context, env *Env, d tpt.Descriptor, tempFile string) (tpt.InstallationDetails, error) {
	if !sysexec.FileExists(alpineReleaseFile) {
		return tpt.InstallationDetails{}, tpterr.NewCritical("not running on Alpine Linux (missing " + alpineReleaseFile + ")")
	}

	var argv []string
	var packageName string
	if d.Metadata.PackageName != "" {
		argv = []string{"apk", "add", d.Metadata.PackageName}
		packageName = d.Metadata.PackageName
	} else {
		argv = []string{"apk", "add", "--allow-untrusted", tempFile}
		packageName = d.Name
	}

	if _, err := env.Exec.Execute(ctx, argv, sysexec.Options{AsRoot: true, StreamOutput: true}); err != nil {
		return tpt.InstallationDetails{}, err
	}
	return tpt.InstallationDetails{
		Handler:     tpt.HandlerAlpineApk,
		PackageName: packageName,
	}, nil
}

func (h *AlpineApkHandler) Uninstall(ctx context.Context, env *Env, details tpt.InstallationDetails) error {
	_, err := env.Exec.Execute(ctx, []string{"apk", "del", details.PackageName}, sysexec.Options{AsRoot: true, StreamOutput: true})
	return err
}
