package handlers

import (
	"context"
	"regexp"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/sysexec"
	"github.com/tpt-project/tpt/internal/tpterr"
)

var aaptPackageRe = regexp.MustCompile(`package: name='([^']+)'`)

// AndroidApkHandler installs Android APKs into a Waydroid container.
// Grounded on tpt_project/handlers/android_apk_handler.py.
type AndroidApkHandler struct{}

func (h *AndroidApkHandler) Tag() tpt.HandlerTag { return tpt.HandlerAndroidApk }

func (h *AndroidApkHandler) Install(ctx context.Context, env *Env, d tpt.Descriptor, tempFile string) (tpt.InstallationDetails, error) {
	if _, ok := env.Exec.CheckDependency("waydroid"); !ok {
		return tpt.InstallationDetails{}, tpterr.NewCritical("waydroid not found in PATH")
	}
	if _, ok := env.Exec.CheckDependency("aapt"); !ok {
		return tpt.InstallationDetails{}, tpterr.NewCritical("aapt not found in PATH")
	}

	res, err := env.Exec.Execute(ctx, []string{"aapt", "dump", "badging", tempFile}, sysexec.Options{})
	if err != nil {
		return tpt.InstallationDetails{}, err
	}
	m := aaptPackageRe.FindStringSubmatch(res.Stdout)
	if m == nil {
		return tpt.InstallationDetails{}, tpterr.NewVerification("could not extract Android package id from aapt output")
	}
	appID := m[1]

	if _, err := env.Exec.Execute(ctx, []string{"waydroid", "app", "install", tempFile}, sysexec.Options{StreamOutput: true}); err != nil {
		return tpt.InstallationDetails{}, err
	}
	return tpt.InstallationDetails{
		Handler: tpt.HandlerAndroidApk,
		AppID:   appID,
	}, nil
}

func (h *AndroidApkHandler) Uninstall(ctx context.Context, env *Env, details tpt.InstallationDetails) error {
	_, err := env.Exec.Execute(ctx, []string{"waydroid", "app", "remove", details.AppID}, sysexec.Options{StreamOutput: true})
	return err
}
