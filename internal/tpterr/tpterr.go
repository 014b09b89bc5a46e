// Package tpterr implements TPT's closed error-kind enum on top of
// github.com/gravitational/trace, so every package in the module raises and
// inspects errors the same way: construct with a NewXxx function, classify
// with KindOf, map to a CLI exit code with ExitCode.
package tpterr

import (
	"fmt"

	"github.com/gravitational/trace"
)

// Kind is the closed domain of error kinds named in the design.
type Kind string

const (
	SystemCommand        Kind = "system_command"
	PackageNotFound       Kind = "package_not_found"
	UnsupportedFormat     Kind = "unsupported_format"
	Verification          Kind = "verification"
	Download              Kind = "download"
	MultipleSourcesFound  Kind = "multiple_sources_found"
	Critical              Kind = "critical"
	UserCancelled         Kind = "user_cancelled"
)

// kinded wraps a trace-decorated error so KindOf can recover the Kind
// without string-matching against the message.
type kinded struct {
	err  error
	kind Kind
}

func (k *kinded) Error() string { return k.err.Error() }
func (k *kinded) Unwrap() error { return k.err }
func (k *kinded) Kind() Kind    { return k.kind }

func wrap(kind Kind, err error) error {
	return &kinded{err: trace.Wrap(err), kind: kind}
}

// KindOf recovers the Kind attached by one of the NewXxx constructors below.
// Errors not constructed through this package report "" (unknown).
func KindOf(err error) Kind {
	var k *kinded
	for err != nil {
		if kk, ok := err.(*kinded); ok {
			k = kk
			break
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
	}
	if k == nil {
		return ""
	}
	return k.kind
}

// ExitCode maps a Kind to the process exit code named in spec.md §6: 0 on
// success (not reachable from an error), 130 on UserCancelled, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if KindOf(err) == UserCancelled {
		return 130
	}
	return 1
}

// SystemCommandError reports a non-zero external command exit or a missing
// executable.
type SystemCommandError struct {
	Command []string
	Stderr  string
}

func (e *SystemCommandError) Error() string {
	return fmt.Sprintf("command %v failed: %s", e.Command, e.Stderr)
}

func NewSystemCommand(command []string, stderr string) error {
	return wrap(SystemCommand, &SystemCommandError{Command: command, Stderr: stderr})
}

// PackageNotFoundError reports that no source had a match after every
// fallback was exhausted.
type PackageNotFoundError struct {
	Package string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package %q not found on any configured source", e.Package)
}

func NewPackageNotFound(pkg string) error {
	return wrap(PackageNotFound, &PackageNotFoundError{Package: pkg})
}

// UnsupportedFormatError reports a descriptor format with no matching
// handler.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported package format %q", e.Format)
}

func NewUnsupportedFormat(format string) error {
	return wrap(UnsupportedFormat, &UnsupportedFormatError{Format: format})
}

// VerificationError reports a SHA-256 mismatch or a missing required
// manifest field.
type VerificationError struct {
	Reason string
}

func (e *VerificationError) Error() string { return "verification failed: " + e.Reason }

func NewVerification(reason string) error {
	return wrap(Verification, &VerificationError{Reason: reason})
}

// DownloadError reports a network or filesystem failure in the downloader.
type DownloadError struct {
	URL    string
	Reason string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %s", e.URL, e.Reason)
}

func NewDownload(url, reason string) error {
	return wrap(Download, &DownloadError{URL: url, Reason: reason})
}

// MultipleSourcesFoundError reports an ambiguous name that resolved against
// more than one source; the caller must re-invoke with an explicit source.
type MultipleSourcesFoundError struct {
	PackageName string
	Choices     []SourceChoice
}

// SourceChoice is one disambiguation candidate surfaced to the caller.
type SourceChoice struct {
	Source  string
	Version string
}

func (e *MultipleSourcesFoundError) Error() string {
	return fmt.Sprintf("package %q found in multiple sources: %v", e.PackageName, e.Choices)
}

func NewMultipleSourcesFound(pkg string, choices []SourceChoice) error {
	return wrap(MultipleSourcesFound, &MultipleSourcesFoundError{PackageName: pkg, Choices: choices})
}

// CriticalError reports a missing indispensable tool or other fatal
// initialization failure; the caller should abort the process.
type CriticalError struct {
	Reason string
}

func (e *CriticalError) Error() string { return "critical: " + e.Reason }

func NewCritical(reason string) error {
	return wrap(Critical, &CriticalError{Reason: reason})
}

// UserCancelledError reports a declined confirmation or Ctrl-C.
type UserCancelledError struct{}

func (e *UserCancelledError) Error() string { return "cancelled by user" }

func NewUserCancelled() error {
	return wrap(UserCancelled, &UserCancelledError{})
}

// DebugReport renders a full trace (stack + wrapped chain) for -debug mode.
func DebugReport(err error) string {
	return trace.DebugReport(err)
}
