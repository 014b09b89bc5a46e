// Package sysexec runs external commands on behalf of handlers and the
// resolver: dpkg, apt-get, flatpak, snap, rpm/dnf/zypper, apk, waydroid,
// wine, pwsh, git, notify-send, and whatever the native package managers
// need. Grounded on the teacher's exec.CommandContext idiom (e.g.
// cmd/distri-installer/installer.go's use of Stdin/Stdout/Stderr wiring and
// argv-in-error-message formatting).
package sysexec

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/gravitational/trace"

	"github.com/tpt-project/tpt/internal/tptlog"
	"github.com/tpt-project/tpt/internal/tpterr"
)

// Result is the outcome of a completed command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Options configures one Execute call.
type Options struct {
	AsRoot        bool
	StreamOutput  bool
	Input         []byte
	Env           []string
	Cwd           string
}

// Runner executes external commands. The zero value is ready to use.
type Runner struct {
	Logger *tptlog.Logger
	// IsRoot reports whether the current process already runs as root; when
	// false and AsRoot is requested, "sudo" is prepended.
	IsRoot bool
}

// Execute runs argv[0] with argv[1:] as arguments. If opts.AsRoot is set and
// the runner does not already run as root, "sudo" is prepended. Output is
// captured unless opts.StreamOutput is set, in which case it is forwarded
// line-by-line to Logger as it arrives. A non-zero exit, or a missing
// executable, fails with tpterr.NewSystemCommand.
func (r *Runner) Execute(ctx context.Context, argv []string, opts Options) (Result, error) {
	if len(argv) == 0 {
		return Result{}, trace.BadParameter("empty argv")
	}

	full := argv
	if opts.AsRoot && !r.IsRoot {
		full = append([]string{"sudo"}, argv...)
	}

	cmd := exec.CommandContext(ctx, full[0], full[1:]...)
	if opts.Cwd != "" {
		cmd.Dir = opts.Cwd
	}
	if opts.Env != nil {
		cmd.Env = opts.Env
	}
	if len(opts.Input) > 0 {
		cmd.Stdin = bytes.NewReader(opts.Input)
	}

	var stdout, stderr bytes.Buffer
	if opts.StreamOutput {
		logger := r.Logger
		outR, outW := io.Pipe()
		errR, errW := io.Pipe()
		cmd.Stdout = io.MultiWriter(&stdout, outW)
		cmd.Stderr = io.MultiWriter(&stderr, errW)
		done := make(chan struct{})
		go streamLines(outR, func(line string) {
			if logger != nil {
				logger.Info("%s", line)
			}
		}, done)
		go streamLines(errR, func(line string) {
			if logger != nil {
				logger.Info("%s", line)
			}
		}, done)
		defer func() {
			outW.Close()
			errW.Close()
			<-done
			<-done
		}()
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
		}
		return res, tpterr.NewSystemCommand(full, res.Stderr)
	}
	return res, nil
}

func streamLines(r io.Reader, emit func(string), done chan<- struct{}) {
	buf := make([]byte, 4096)
	var line bytes.Buffer
	for {
		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			if buf[i] == '\n' {
				emit(line.String())
				line.Reset()
				continue
			}
			line.WriteByte(buf[i])
		}
		if err != nil {
			if line.Len() > 0 {
				emit(line.String())
			}
			break
		}
	}
	done <- struct{}{}
}

// CheckDependency searches PATH for name, returning its resolved path if
// found.
func (r *Runner) CheckDependency(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}

// FileExists is a tiny convenience used by several handlers to gate on the
// presence of a marker file (e.g. /etc/alpine-release).
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
