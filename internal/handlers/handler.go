// Package handlers implements the 14 format-specific Handler
// implementations named in spec.md §4.5: each knows how to install a
// pre-downloaded temp file (or drive a native manager) and how to reverse
// exactly what it did. Grounded on the original tpt_project/handlers/*.py
// files and the teacher's subprocess-invocation idiom.
package handlers

import (
	"context"
	"strings"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/config"
	"github.com/tpt-project/tpt/internal/sysexec"
	"github.com/tpt-project/tpt/internal/tptlog"
	"github.com/tpt-project/tpt/internal/tpterr"
)

// Env is the shared context every handler needs.
type Env struct {
	Exec   *sysexec.Runner
	Config *config.Config
	Logger *tptlog.Logger
	// Installer is invoked by MetaZipHandler to install each inner
	// descriptor through the orchestrator's normal local-file install path
	// without creating an import cycle on internal/orchestrator.
	Installer func(ctx context.Context, d tpt.Descriptor, file string) (tpt.InstalledRecord, error)
	// Uninstaller is invoked by MetaZipHandler to reverse each child package
	// it installed, through the orchestrator's normal uninstall path.
	Uninstaller func(ctx context.Context, name string) error
}

// Handler drives the install/uninstall of one package format.
type Handler interface {
	Tag() tpt.HandlerTag
	Install(ctx context.Context, env *Env, d tpt.Descriptor, tempFile string) (tpt.InstallationDetails, error)
	Uninstall(ctx context.Context, env *Env, details tpt.InstallationDetails) error
}

// compoundSuffixes are tried before single-extension inference, per spec.md
// §4.5's dispatch rule.
var compoundSuffixes = []string{".deb.xz", ".tar.gz", ".tar.xz"}

var singleSuffixes = map[string]tpt.Format{
	".deb":      tpt.FormatDeb,
	".sh":       tpt.FormatSh,
	".py":       tpt.FormatPy,
	".AppImage": tpt.FormatAppImage,
	".tgz":      tpt.FormatTarGz,
	".rpm":      tpt.FormatRpm,
	".ps1":      tpt.FormatPs1,
	".exe":      tpt.FormatExe,
	".msi":      tpt.FormatMsi,
	".apk":      tpt.FormatApk,
	".zip":      tpt.FormatMetaZip,
}

// InferFormat guesses a Format from a download URL's suffix when a
// descriptor omits Format. Compound suffixes are tried first.
func InferFormat(url string) (tpt.Format, bool) {
	for _, suf := range compoundSuffixes {
		if strings.HasSuffix(url, suf) {
			switch suf {
			case ".deb.xz":
				return tpt.FormatDebXz, true
			case ".tar.gz":
				return tpt.FormatTarGz, true
			case ".tar.xz":
				return tpt.FormatTarXz, true
			}
		}
	}
	for suf, format := range singleSuffixes {
		if strings.HasSuffix(url, suf) {
			return format, true
		}
	}
	return "", false
}

// registry maps both Format (install-time dispatch) and HandlerTag
// (uninstall-time dispatch) to the same handler instances.
func registry(env *Env) map[string]Handler {
	return map[string]Handler{
		string(tpt.FormatDeb):           &DebHandler{},
		string(tpt.HandlerDeb):          &DebHandler{},
		string(tpt.FormatDebXz):         &DebXzHandler{},
		string(tpt.FormatSh):            &ScriptHandler{},
		string(tpt.FormatPy):            &ScriptHandler{},
		string(tpt.HandlerScript):       &ScriptHandler{},
		string(tpt.FormatAppImage):      &AppImageHandler{},
		string(tpt.HandlerAppImage):     &AppImageHandler{},
		string(tpt.FormatTarGz):         &ArchiveHandler{},
		string(tpt.FormatTarXz):         &ArchiveHandler{},
		string(tpt.HandlerArchive):      &ArchiveHandler{},
		string(tpt.FormatRpm):           &RpmHandler{},
		string(tpt.HandlerRpm):          &RpmHandler{},
		string(tpt.FormatFlatpak):       &FlatpakHandler{},
		string(tpt.HandlerFlatpak):      &FlatpakHandler{},
		string(tpt.FormatSnap):          &SnapHandler{},
		string(tpt.HandlerSnap):         &SnapHandler{},
		string(tpt.FormatAlpineApk):     &AlpineApkHandler{},
		string(tpt.HandlerAlpineApk):    &AlpineApkHandler{},
		string(tpt.FormatAndroidApk):    &AndroidApkHandler{},
		string(tpt.FormatApk):           &AndroidApkHandler{},
		string(tpt.HandlerAndroidApk):   &AndroidApkHandler{},
		string(tpt.FormatExe):           &ExeHandler{},
		string(tpt.HandlerExe):          &ExeHandler{},
		string(tpt.FormatMsi):           &MsiHandler{},
		string(tpt.HandlerMsi):          &MsiHandler{},
		string(tpt.FormatPs1):           &PowershellHandler{},
		string(tpt.HandlerPowershell):   &PowershellHandler{},
		string(tpt.FormatNemasPatchZip): &NemasPatchZipHandler{},
		string(tpt.HandlerNemasPatchZip): &NemasPatchZipHandler{},
		string(tpt.FormatMetaZip):       &MetaZipHandler{},
		string(tpt.HandlerMetaZip):      &MetaZipHandler{},
	}
}

// ForFormat resolves a Handler by descriptor Format.
func ForFormat(format tpt.Format) (Handler, error) {
	h, ok := registry(nil)[string(format)]
	if !ok {
		return nil, tpterr.NewUnsupportedFormat(string(format))
	}
	return h, nil
}

// ForTag resolves a Handler by the HandlerTag stored in an installed
// record; this is the only authority for uninstall dispatch.
func ForTag(tag tpt.HandlerTag) (Handler, error) {
	h, ok := registry(nil)[string(tag)]
	if !ok {
		return nil, tpterr.NewUnsupportedFormat(string(tag))
	}
	return h, nil
}
