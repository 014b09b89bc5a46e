// Package tpt holds the types and cross-cutting primitives shared by every
// TPT package: the package descriptor and installed-record data model,
// interrupt handling, process-exit cleanup, and version comparison.
package tpt

// Source identifies where a Descriptor was resolved from.
type Source string

const (
	SourceTPT    Source = "tpt"
	SourceTPTGit Source = "tpt-git"
	SourceAPT    Source = "apt"
	SourceFlatpak Source = "flatpak"
	SourceSnap   Source = "snap"
)

// Format identifies the package format a Descriptor carries, and therefore
// which Handler drives its installation. File extensions are only a
// heuristic for inferring Format when a descriptor omits it; Format (or, in
// the installed DB, the handler tag) is the sole authority for dispatch.
type Format string

const (
	FormatDeb           Format = ".deb"
	FormatDebXz         Format = ".deb.xz"
	FormatSh            Format = ".sh"
	FormatPy            Format = ".py"
	FormatAppImage      Format = ".AppImage"
	FormatTarGz         Format = ".tar.gz"
	FormatTarXz         Format = ".tar.xz"
	FormatRpm           Format = ".rpm"
	FormatPs1           Format = ".ps1"
	FormatExe           Format = ".exe"
	FormatMsi           Format = ".msi"
	FormatApk           Format = ".apk"
	FormatFlatpak       Format = "flatpak"
	FormatSnap          Format = "snap"
	FormatAlpineApk     Format = "alpine_apk"
	FormatAndroidApk    Format = "android_apk"
	FormatNemasPatchZip Format = "nemas_patch_zip"
	FormatMetaZip       Format = "meta_zip"
)

// Descriptor is the in-memory record produced by the resolver and consumed
// by handlers. It is never persisted directly; on a successful install it is
// projected into an InstalledRecord (see installed.go).
type Descriptor struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Source      Source `json:"source"`
	Format      Format `json:"format,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	SHA256      string `json:"sha256,omitempty"`

	Description    string   `json:"description,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	RepositoryURL  string   `json:"repository_url,omitempty"`

	Metadata Metadata `json:"metadata,omitempty"`
}

// Metadata is the format-specific submap carried by a Descriptor. Every
// field is optional; which ones are meaningful depends on Format.
type Metadata struct {
	Icon                   string `json:"icon,omitempty"`
	Terminal               bool   `json:"terminal,omitempty"`
	Categories             string `json:"categories,omitempty"`
	SilentInstallFlags     string `json:"silent_install_flags,omitempty"`
	ExecutablePathInPrefix string `json:"executable_path_in_prefix,omitempty"`
	StripComponents        *int   `json:"strip_components,omitempty"`

	AppID string `json:"app_id,omitempty"` // flatpak

	SnapName string `json:"snap_name,omitempty"`
	Channel  string `json:"channel,omitempty"`
	Classic  bool   `json:"classic,omitempty"`

	Remote      string `json:"remote,omitempty"`      // flatpak
	PackageName string `json:"package_name,omitempty"` // alpine apk

	ClonePath string `json:"clone_path,omitempty"` // tpt-git
}

// SentinelVersion is used for descriptors synthesized for staged-file
// installs (the AADPO applier), which have no manifest to read a real
// version from.
const SentinelVersion = "0.0.0"

// ConventionVersion is the version stamped onto descriptors synthesized by
// the resolver's convention (URL-guessing) fallback.
const ConventionVersion = "0.0.0-conv"
