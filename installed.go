package tpt

// HandlerTag names a handler implementation. It is the only authority for
// uninstall dispatch: the installed DB stores the tag, never a pointer to
// code, which keeps the persistence format stable across refactors.
type HandlerTag string

const (
	HandlerDeb           HandlerTag = "DebHandler"
	HandlerScript        HandlerTag = "ScriptHandler"
	HandlerAppImage      HandlerTag = "AppImageHandler"
	HandlerArchive       HandlerTag = "ArchiveHandler"
	HandlerRpm           HandlerTag = "RpmHandler"
	HandlerFlatpak       HandlerTag = "FlatpakHandler"
	HandlerSnap          HandlerTag = "SnapHandler"
	HandlerAlpineApk     HandlerTag = "AlpineApkHandler"
	HandlerAndroidApk    HandlerTag = "AndroidApkHandler"
	HandlerExe           HandlerTag = "ExeHandler"
	HandlerMsi           HandlerTag = "MsiHandler"
	HandlerPowershell    HandlerTag = "PowershellHandler"
	HandlerNemasPatchZip HandlerTag = "NemasPatchZipHandler"
	HandlerMetaZip       HandlerTag = "MetaZipHandler"
)

// InstallationDetails is the closed union of everything a handler might need
// to reverse its own install. Only the fields relevant to Handler are ever
// populated; the rest stay zero.
type InstallationDetails struct {
	Handler HandlerTag `json:"handler"`

	InstallPath          string   `json:"install_path,omitempty"`
	SymlinkPath          string   `json:"symlink_path,omitempty"`
	DesktopFile          string   `json:"desktop_file,omitempty"`
	PackageName          string   `json:"package_name,omitempty"`
	WinePrefix           string   `json:"wine_prefix,omitempty"`
	LauncherPath         string   `json:"launcher_path,omitempty"`
	AppID                string   `json:"app_id,omitempty"`
	SnapName             string   `json:"snap_name,omitempty"`
	InstalledSubPackages []string `json:"installed_sub_packages,omitempty"`
	AppliedOn            string   `json:"applied_on,omitempty"`
	ClonePath            string   `json:"clone_path,omitempty"`

	// Sandbox additions (see SPEC_FULL.md §4 sandboxed install).
	Sandbox     bool   `json:"sandbox,omitempty"`
	SandboxName string `json:"sandbox_name,omitempty"`
}

// InstalledRecord is the persisted, durable record of one installed package,
// keyed by package name in the installed-DB.
type InstalledRecord struct {
	Version             string              `json:"version"`
	Source              Source              `json:"source"`
	RepositoryURL       string              `json:"repository_url,omitempty"`
	InstallationDetails InstallationDetails `json:"installation_details"`
}
