// Package orchestrator implements spec.md §4.8: the PackageManager facade
// that ties the resolver, downloader, handlers, and installed-DB together
// into search/install/uninstall/upgrade/system-integrate operations.
// Grounded on the teacher's cmd/distri/install.go top-level install flow
// (resolve -> fetch -> verify -> unpack -> record), generalized from one
// package format to the full handler dispatch table.
package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gravitational/trace"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/config"
	"github.com/tpt-project/tpt/internal/db"
	"github.com/tpt-project/tpt/internal/downloader"
	"github.com/tpt-project/tpt/internal/handlers"
	"github.com/tpt-project/tpt/internal/manifest"
	"github.com/tpt-project/tpt/internal/resolver"
	"github.com/tpt-project/tpt/internal/sysexec"
	"github.com/tpt-project/tpt/internal/tptlog"
	"github.com/tpt-project/tpt/internal/tpterr"
)

// PackageManager is the orchestrator facade named in spec.md §4.8.
type PackageManager struct {
	Exec       *sysexec.Runner
	Config     *config.Config
	Logger     *tptlog.Logger
	DB         *db.DB
	Resolver   *resolver.Resolver
	Downloader *downloader.Downloader
	Fetcher    *manifest.Fetcher
	UserAgent  string
}

func (pm *PackageManager) env() *handlers.Env {
	return &handlers.Env{
		Exec:        pm.Exec,
		Config:      pm.Config,
		Logger:      pm.Logger,
		Installer:   pm.installDescriptorFile,
		Uninstaller: pm.Uninstall,
	}
}

// Search delegates to the resolver's four-backend fan-out.
func (pm *PackageManager) Search(ctx context.Context, term string) ([]tpt.Descriptor, error) {
	return pm.Resolver.Search(ctx, term)
}

// Install runs the pipeline in spec.md §4.8: resolve (exact, then
// convention, then git), dispatch native-manager sources directly, or
// download+verify+handle for tpt/tpt-git sources.
func (pm *PackageManager) Install(ctx context.Context, name, source string) (tpt.InstalledRecord, error) {
	d, err := pm.Resolver.ResolveForInstall(ctx, name, source)
	if err != nil {
		return tpt.InstalledRecord{}, err
	}
	return pm.installDescriptor(ctx, d)
}

func (pm *PackageManager) installDescriptor(ctx context.Context, d tpt.Descriptor) (tpt.InstalledRecord, error) {
	switch d.Source {
	case tpt.SourceAPT:
		return pm.installNativeAPT(ctx, d)
	case tpt.SourceFlatpak:
		return pm.installNativeFlatpak(ctx, d)
	case tpt.SourceSnap:
		return pm.installNativeSnap(ctx, d)
	}

	file, cleanup, err := pm.materialize(ctx, d)
	if err != nil {
		return tpt.InstalledRecord{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	if d.SHA256 != "" {
		if err := verifySHA256(file, d.SHA256); err != nil {
			return tpt.InstalledRecord{}, err
		}
	}

	record, err := pm.installDescriptorFile(ctx, d, file)
	if err != nil {
		return tpt.InstalledRecord{}, err
	}
	pm.notify(fmt.Sprintf("TPT installed %s", d.Name))
	return record, nil
}

// materialize produces a local file for d, either by reusing a git
// checkout's clone_path or by downloading download_url into staging. The
// returned cleanup removes any temp file it created; it is nil when the
// file came from a git checkout (which must not be deleted).
func (pm *PackageManager) materialize(ctx context.Context, d tpt.Descriptor) (string, func(), error) {
	if d.Metadata.ClonePath != "" {
		return d.Metadata.ClonePath, nil, nil
	}
	if d.DownloadURL == "" {
		return "", nil, tpterr.NewVerification("descriptor " + d.Name + " has neither download_url nor clone_path")
	}

	if length, err := pm.Downloader.ContentLength(ctx, d.DownloadURL); err == nil && length > 0 {
		if err := downloader.CheckFreeSpace(pm.Config.DirStaging, length); err != nil {
			return "", nil, err
		}
	}

	dest := filepath.Join(pm.Config.DirStaging, "files", d.Name+fileSuffixFor(d))
	if err := pm.Downloader.Fetch(ctx, d.DownloadURL, dest, d.Name, pm.UserAgent, nil); err != nil {
		return "", nil, err
	}
	return dest, func() { os.Remove(dest) }, nil
}

func fileSuffixFor(d tpt.Descriptor) string {
	if d.Format != "" {
		return string(d.Format)
	}
	if f, ok := handlers.InferFormat(d.DownloadURL); ok {
		return string(f)
	}
	return filepath.Ext(d.DownloadURL)
}

// installDescriptorFile dispatches d's format to its Handler and persists
// the resulting record. It is also handed to handlers.Env as Installer, so
// MetaZipHandler can recurse into it for each bundled child descriptor.
func (pm *PackageManager) installDescriptorFile(ctx context.Context, d tpt.Descriptor, file string) (tpt.InstalledRecord, error) {
	format := d.Format
	if format == "" {
		f, ok := handlers.InferFormat(file)
		if !ok {
			return tpt.InstalledRecord{}, tpterr.NewUnsupportedFormat("<none>")
		}
		format = f
	}

	h, err := handlers.ForFormat(format)
	if err != nil {
		return tpt.InstalledRecord{}, err
	}
	details, err := h.Install(ctx, pm.env(), d, file)
	if err != nil {
		return tpt.InstalledRecord{}, err
	}

	record := tpt.InstalledRecord{
		Version:             d.Version,
		Source:              d.Source,
		RepositoryURL:       d.RepositoryURL,
		InstallationDetails: details,
	}
	if err := pm.DB.Save(d.Name, record); err != nil {
		return tpt.InstalledRecord{}, trace.Wrap(err)
	}
	return record, nil
}

// InstallFromStagedFile installs a descriptor whose package file was staged
// ahead of time (the AADPO path, spec.md §4.9), bypassing resolve/download.
func (pm *PackageManager) InstallFromStagedFile(ctx context.Context, name, stagedFile string) (tpt.InstalledRecord, error) {
	path := stagedFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(pm.Config.DirStaging, "files", stagedFile)
	}
	format, ok := handlers.InferFormat(path)
	if !ok {
		return tpt.InstalledRecord{}, tpterr.NewUnsupportedFormat("<none>")
	}
	d := tpt.Descriptor{Name: name, Version: tpt.SentinelVersion, Source: tpt.SourceTPT, Format: format}
	record, err := pm.installDescriptorFile(ctx, d, path)
	if err != nil {
		return tpt.InstalledRecord{}, err
	}
	os.Remove(path)
	return record, nil
}

func (pm *PackageManager) installNativeAPT(ctx context.Context, d tpt.Descriptor) (tpt.InstalledRecord, error) {
	name := d.Name
	if d.Metadata.PackageName != "" {
		name = d.Metadata.PackageName
	}
	if _, err := pm.Exec.Execute(ctx, []string{"apt-get", "install", "-y", name}, sysexec.Options{AsRoot: true, StreamOutput: true}); err != nil {
		return tpt.InstalledRecord{}, err
	}
	return tpt.InstalledRecord{
		Version: d.Version,
		Source:  tpt.SourceAPT,
		InstallationDetails: tpt.InstallationDetails{
			Handler:     tpt.HandlerDeb,
			PackageName: name,
		},
	}, nil
}

func (pm *PackageManager) installNativeFlatpak(ctx context.Context, d tpt.Descriptor) (tpt.InstalledRecord, error) {
	appID := d.Metadata.AppID
	if appID == "" {
		return tpt.InstalledRecord{}, tpterr.NewVerification("flatpak descriptor missing metadata.app_id")
	}
	remote := d.Metadata.Remote
	if remote == "" {
		remote = "flathub"
	}
	if _, err := pm.Exec.Execute(ctx, []string{"flatpak", "install", "--user", "--noninteractive", remote, appID}, sysexec.Options{StreamOutput: true}); err != nil {
		return tpt.InstalledRecord{}, err
	}
	return tpt.InstalledRecord{
		Version: d.Version,
		Source:  tpt.SourceFlatpak,
		InstallationDetails: tpt.InstallationDetails{
			Handler: tpt.HandlerFlatpak,
			AppID:   appID,
		},
	}, nil
}

func (pm *PackageManager) installNativeSnap(ctx context.Context, d tpt.Descriptor) (tpt.InstalledRecord, error) {
	snapName := d.Metadata.SnapName
	if snapName == "" {
		snapName = d.Name
	}
	argv := []string{"snap", "install"}
	if d.Metadata.Channel != "" {
		argv = append(argv, "--channel", d.Metadata.Channel)
	}
	if d.Metadata.Classic {
		argv = append(argv, "--classic")
	}
	argv = append(argv, snapName)
	if _, err := pm.Exec.Execute(ctx, argv, sysexec.Options{AsRoot: true, StreamOutput: true}); err != nil {
		return tpt.InstalledRecord{}, err
	}
	return tpt.InstalledRecord{
		Version: d.Version,
		Source:  tpt.SourceSnap,
		InstallationDetails: tpt.InstallationDetails{
			Handler:  tpt.HandlerSnap,
			SnapName: snapName,
		},
	}, nil
}

// Uninstall prefers the TPT-DB path (dispatch by stored handler tag); for a
// name TPT never installed, it probes each native manager in turn.
func (pm *PackageManager) Uninstall(ctx context.Context, name string) error {
	if record, ok := pm.DB.Get(name); ok {
		h, err := handlers.ForTag(record.InstallationDetails.Handler)
		if err != nil {
			return err
		}
		if err := h.Uninstall(ctx, pm.env(), record.InstallationDetails); err != nil {
			return err
		}
		if err := pm.DB.Remove(name); err != nil {
			return trace.Wrap(err)
		}
		pm.notify(fmt.Sprintf("TPT uninstalled %s", name))
		return nil
	}

	if owns, err := pm.nativeOwns(ctx, "dpkg", []string{"dpkg", "-l", name}, name); err == nil && owns {
		_, err := pm.Exec.Execute(ctx, []string{"apt-get", "remove", "-y", name}, sysexec.Options{AsRoot: true, StreamOutput: true})
		return err
	}
	if owns, err := pm.nativeOwns(ctx, "flatpak", []string{"flatpak", "list", "--app"}, name); err == nil && owns {
		_, err := pm.Exec.Execute(ctx, []string{"flatpak", "uninstall", "--user", "--noninteractive", name}, sysexec.Options{StreamOutput: true})
		return err
	}
	if owns, err := pm.nativeOwns(ctx, "snap", []string{"snap", "list"}, name); err == nil && owns {
		_, err := pm.Exec.Execute(ctx, []string{"snap", "remove", name}, sysexec.Options{AsRoot: true, StreamOutput: true})
		return err
	}
	return tpterr.NewPackageNotFound(name)
}

func (pm *PackageManager) nativeOwns(ctx context.Context, tool string, probe []string, name string) (bool, error) {
	if _, ok := pm.Exec.CheckDependency(tool); !ok {
		return false, nil
	}
	res, err := pm.Exec.Execute(ctx, probe, sysexec.Options{})
	if err != nil {
		return false, nil
	}
	return containsWord(res.Stdout, name), nil
}

// ListInstalled returns a snapshot of every TPT-managed installed record.
func (pm *PackageManager) ListInstalled() map[string]tpt.InstalledRecord {
	return pm.DB.All()
}

func verifySHA256(path, want string) error {
	f, err := os.Open(path)
	if err != nil {
		return trace.Wrap(err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return trace.Wrap(err)
	}
	got := hex.EncodeToString(h.Sum(nil))
	if got != want {
		return tpterr.NewVerification(fmt.Sprintf("sha256 mismatch: want %s got %s", want, got))
	}
	return nil
}

// notify sends a best-effort desktop notification via notify-send, per
// SPEC_FULL.md §4's supplemented feature. A missing binary or a failed call
// is logged, never surfaced to the caller.
func (pm *PackageManager) notify(message string) {
	if _, ok := pm.Exec.CheckDependency("notify-send"); !ok {
		return
	}
	ctx := context.Background()
	if _, err := pm.Exec.Execute(ctx, []string{"notify-send", "TPT", message}, sysexec.Options{}); err != nil {
		pm.Logger.Debug("desktop notification failed: %v", err)
	}
}

func containsWord(haystack, word string) bool {
	for _, line := range strings.Split(haystack, "\n") {
		for _, field := range strings.Fields(line) {
			if field == word {
				return true
			}
		}
	}
	return false
}
