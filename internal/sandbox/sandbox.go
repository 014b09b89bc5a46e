// Package sandbox creates throwaway LXC containers (lxc-create, lxc-start,
// lxc-wait, lxc-stop, lxc-destroy) and runs commands inside them via
// lxc-attach. The orchestrator uses it for the native package formats whose
// install is a single package-manager command (deb, deb.xz, rpm, alpine
// apk); other handlers are not sandboxed. It implements the original's instalar_en_ambiente_aislado
// supplement (SPEC_FULL.md §4): CLI --sandbox routes here instead of
// installing on the host. Grounded on tpt_project/core/sandbox.py
// (_create_lxc_container/_run_command_in_vm/desinstalar_de_ambiente_
// aislado) and the teacher's subprocess-wrapping idiom in internal/sysexec.
package sandbox

import (
	"context"
	"fmt"

	"github.com/tpt-project/tpt/internal/sysexec"
	"github.com/tpt-project/tpt/internal/tpterr"
)

// containerNamePrefix names every TPT-managed LXC container so FixBroken-
// style maintenance and manual inspection can find them.
const containerNamePrefix = "tpt-sandbox-"

// ContainerName derives the LXC container name for a sandboxed install of
// pkg.
func ContainerName(pkg string) string {
	return containerNamePrefix + pkg
}

// Sandbox creates and destroys per-package LXC containers and runs
// commands inside them.
type Sandbox struct {
	Exec *sysexec.Runner
}

// New builds a Sandbox driven by exec.
func New(exec *sysexec.Runner) *Sandbox {
	return &Sandbox{Exec: exec}
}

// Create starts a fresh container named after pkg, using the "download"
// template (the original's default), and waits for it to report running.
func (s *Sandbox) Create(ctx context.Context, pkg string) (string, error) {
	if _, ok := s.Exec.CheckDependency("lxc-create"); !ok {
		return "", tpterr.NewCritical("lxc-create not found in PATH; sandboxed install requires LXC")
	}
	name := ContainerName(pkg)

	if _, err := s.Exec.Execute(ctx, []string{"lxc-create", "-n", name, "-t", "download", "--",
		"--dist", "debian", "--release", "bookworm", "--arch", "amd64"}, sysexec.Options{AsRoot: true, StreamOutput: true}); err != nil {
		return "", err
	}
	if _, err := s.Exec.Execute(ctx, []string{"lxc-start", "-n", name, "-d"}, sysexec.Options{AsRoot: true, StreamOutput: true}); err != nil {
		return "", err
	}
	if _, err := s.Exec.Execute(ctx, []string{"lxc-wait", "-n", name, "-s", "RUNNING"}, sysexec.Options{AsRoot: true}); err != nil {
		return "", err
	}
	return name, nil
}

// Run executes argv inside the named container via lxc-attach.
func (s *Sandbox) Run(ctx context.Context, containerName string, argv []string) error {
	full := append([]string{"lxc-attach", "-n", containerName, "--"}, argv...)
	_, err := s.Exec.Execute(ctx, full, sysexec.Options{AsRoot: true, StreamOutput: true})
	return err
}

// CopyIn pushes a host file into the container's filesystem with a plain
// host-side cp rather than a network copy (the container's root filesystem
// is reachable directly on the host under /var/lib/lxc/<name>/rootfs,
// matching the original's approach).
func (s *Sandbox) CopyIn(ctx context.Context, containerName, hostPath, containerRelPath string) error {
	dst := fmt.Sprintf("/var/lib/lxc/%s/rootfs/%s", containerName, containerRelPath)
	_, err := s.Exec.Execute(ctx, []string{"cp", hostPath, dst}, sysexec.Options{AsRoot: true})
	return err
}

// Destroy stops and removes the named container. Best-effort: a stop
// failure does not prevent the destroy attempt.
func (s *Sandbox) Destroy(ctx context.Context, containerName string) error {
	_, _ = s.Exec.Execute(ctx, []string{"lxc-stop", "-n", containerName}, sysexec.Options{AsRoot: true})
	_, err := s.Exec.Execute(ctx, []string{"lxc-destroy", "-n", containerName}, sysexec.Options{AsRoot: true, StreamOutput: true})
	return err
}
