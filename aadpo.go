package tpt

// AADPOActionKind distinguishes the two action shapes a staged AADPO
// manifest can contain.
type AADPOActionKind string

const (
	AADPOInstallTPT AADPOActionKind = "install_tpt"
	AADPOSysUpdate  AADPOActionKind = "sys_update"
)

// SysManager names a native package manager the AADPO applier can trigger a
// full upgrade/update/refresh of.
type SysManager string

const (
	SysManagerAPT     SysManager = "apt"
	SysManagerFlatpak SysManager = "flatpak"
	SysManagerSnap    SysManager = "snap"
)

// AADPOAction is one staged step. For AADPOInstallTPT, Name and File (a
// filename relative to staging/files/) are set; for AADPOSysUpdate, only
// Manager is set.
type AADPOAction struct {
	Action  AADPOActionKind `json:"action"`
	Name    string          `json:"name,omitempty"`
	File    string          `json:"file,omitempty"`
	Manager SysManager      `json:"manager,omitempty"`
}

// AADPOManifest is the ordered list of staged actions persisted at
// <state>/staging/aadpo_manifest.json.
type AADPOManifest struct {
	Actions []AADPOAction `json:"actions"`
}
