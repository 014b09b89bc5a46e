package handlers

import (
	"context"
	"strings"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/sysexec"
	"github.com/tpt-project/tpt/internal/tpterr"
)

// RpmHandler installs .rpm files using the highest-level tool available
// (dnf > zypper > rpm). Grounded on tpt_project/handlers/rpm_handler.py.
type RpmHandler struct{}

func (h *RpmHandler) Tag() tpt.HandlerTag { return tpt.HandlerRpm }

func detectRpmTool(env *Env) (string, bool) {
	for _, tool := range []string{"dnf", "zypper", "rpm"} {
		if _, ok := env.Exec.CheckDependency(tool); ok {
			return tool, true
		}
	}
	return "", false
}

func (h *RpmHandler) Install(ctx context.Context, env *Env, d tpt.Descriptor, tempFile string) (tpt.InstallationDetails, error) {
	tool, ok := detectRpmTool(env)
	if !ok {
		return tpt.InstallationDetails{}, tpterr.NewCritical("no rpm-capable tool (dnf, zypper, rpm) found in PATH")
	}
	if tool == "rpm" {
		env.Logger.Warning("only rpm is available; dependencies will not be resolved for %s", d.Name)
	}

	var argv []string
	switch tool {
	case "dnf":
		argv = []string{"dnf", "install", "-y", tempFile}
	case "zypper":
		argv = []string{"zypper", "--non-interactive", "install", tempFile}
	default:
		argv = []string{"rpm", "-i", tempFile}
	}
	if _, err := env.Exec.Execute(ctx, argv, sysexec.Options{AsRoot: true, StreamOutput: true}); err != nil {
		return tpt.InstallationDetails{}, err
	}

	res, err := env.Exec.Execute(ctx, []string{"rpm", "-q", "--queryformat", "%{NAME}", "-p", tempFile}, sysexec.Options{})
	if err != nil {
		return tpt.InstallationDetails{}, err
	}
	packageName := strings.TrimSpace(res.Stdout)

	return tpt.InstallationDetails{
		Handler:     tpt.HandlerRpm,
		PackageName: packageName,
	}, nil
}

func (h *RpmHandler) Uninstall(ctx context.Context, env *Env, details tpt.InstallationDetails) error {
	tool, ok := detectRpmTool(env)
	if !ok {
		return tpterr.NewCritical("no rpm-capable tool (dnf, zypper, rpm) found in PATH")
	}
	var argv []string
	switch tool {
	case "dnf":
		argv = []string{"dnf", "remove", "-y", details.PackageName}
	case "zypper":
		argv = []string{"zypper", "--non-interactive", "remove", details.PackageName}
	default:
		argv = []string{"rpm", "-e", details.PackageName}
	}
	_, err := env.Exec.Execute(ctx, argv, sysexec.Options{AsRoot: true, StreamOutput: true})
	return err
}
