// Package config produces TPT's canonical path layout and persisted
// settings. Grounded on the original tpt_project/core/config.py
// (Configuracion) and the teacher's internal/env package for the
// XDG-resolution idiom, generalized to the four-directory root-vs-user
// split spec.md §4.1 requires.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/gravitational/trace"
	"golang.org/x/sys/unix"

	"github.com/tpt-project/tpt/internal/tpterr"
)

const (
	DirOptRoot         = "/opt"
	DirEjecutablesRoot = "/usr/local/bin"
	DirAplicacionesRoot = "/usr/share/applications"
)

// Config holds the canonical path layout for one TPT invocation.
type Config struct {
	StateDir  string
	CacheDir  string
	LogDir    string
	ConfigDir string

	ArchivoRepos         string // tpt-repos.list
	ArchivoRama          string // branch.txt
	BDPaquetesInstalados string // installed.json
	DirStaging           string
	DirCacheRepos        string // <cache>/repos
	DirGitClones         string // <state>/git_clones
	DirWinePrefixes      string // <state>/wine_prefixes
	SettingsFile         string // settings.json

	IsRoot bool
}

// New builds the canonical layout. When the effective UID is 0 (including
// invocations under sudo), state lives under /var/lib/tpt (etc.); otherwise
// under the current user's XDG directories, with the home directory resolved
// via go-homedir.
func New() (*Config, error) {
	root := unix.Geteuid() == 0

	var stateDir, cacheDir, logDir, configDir string
	if root {
		stateDir = "/var/lib/tpt"
		cacheDir = "/var/cache/tpt"
		logDir = "/var/log/tpt"
		configDir = "/etc/tpt"
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, trace.Wrap(err)
		}
		stateDir = xdgOr(home, "XDG_STATE_HOME", ".local/state", "tpt")
		cacheDir = xdgOr(home, "XDG_CACHE_HOME", ".cache", "tpt")
		logDir = filepath.Join(stateDir, "log")
		configDir = xdgOr(home, "XDG_CONFIG_HOME", ".config", "tpt")
	}

	c := &Config{
		StateDir:  stateDir,
		CacheDir:  cacheDir,
		LogDir:    logDir,
		ConfigDir: configDir,

		ArchivoRepos:         filepath.Join(configDir, "tpt-repos.list"),
		ArchivoRama:          filepath.Join(configDir, "branch.txt"),
		BDPaquetesInstalados: filepath.Join(stateDir, "installed.json"),
		DirStaging:           filepath.Join(stateDir, "staging"),
		DirCacheRepos:        filepath.Join(cacheDir, "repos"),
		DirGitClones:         filepath.Join(stateDir, "git_clones"),
		DirWinePrefixes:      filepath.Join(stateDir, "wine_prefixes"),
		SettingsFile:         filepath.Join(configDir, "settings.json"),

		IsRoot: root,
	}
	return c, nil
}

func xdgOr(home, envVar, fallbackRel, leaf string) string {
	if v := os.Getenv(envVar); v != "" {
		return filepath.Join(v, leaf)
	}
	return filepath.Join(home, fallbackRel, leaf)
}

// AsegurarDirectorios creates every directory in the layout that does not
// yet exist. Failure is fatal: the caller should treat the returned error as
// tpterr.Critical.
func (c *Config) AsegurarDirectorios() error {
	dirs := []string{
		c.StateDir, c.CacheDir, c.LogDir, c.ConfigDir,
		c.DirStaging,
		filepath.Join(c.DirStaging, "files"),
		c.DirCacheRepos,
		c.DirGitClones,
		c.DirWinePrefixes,
		filepath.Join(c.CacheDir, "url_cache"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return tpterr.NewCritical("creating directory " + d + ": " + err.Error())
		}
	}
	return nil
}

// Settings is the recognized JSON key-value store persisted at
// SettingsFile. Unrecognized keys are ignored on read; missing keys take the
// values from DefaultSettings below.
type Settings struct {
	UseRich        bool `json:"use_rich"`
	ConfirmActions bool `json:"confirm_actions"`
	AADPOEnabled   bool `json:"aadpo_enabled"`
	NetworkTimeout int  `json:"network_timeout"`
	SSLVerify      bool `json:"ssl_verify"`
}

// DefaultSettings returns the settings used when settings.json is absent or
// a key is missing.
func DefaultSettings() Settings {
	return Settings{
		UseRich:        true,
		ConfirmActions: true,
		AADPOEnabled:   true,
		NetworkTimeout: 15,
		SSLVerify:      true,
	}
}

// LoadSettings reads SettingsFile, filling in defaults for absent keys. A
// missing file is not an error: it returns DefaultSettings().
func (c *Config) LoadSettings() (Settings, error) {
	s := DefaultSettings()
	b, err := os.ReadFile(c.SettingsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, trace.Wrap(err)
	}
	// Decode into a map first so unknown keys are silently ignored and
	// known keys missing from the file keep their default rather than
	// being zeroed by a plain Unmarshal into Settings.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return s, trace.Wrap(err)
	}
	apply := func(key string, dst interface{}) {
		v, ok := raw[key]
		if !ok {
			return
		}
		_ = json.Unmarshal(v, dst)
	}
	apply("use_rich", &s.UseRich)
	apply("confirm_actions", &s.ConfirmActions)
	apply("aadpo_enabled", &s.AADPOEnabled)
	apply("network_timeout", &s.NetworkTimeout)
	apply("ssl_verify", &s.SSLVerify)
	return s, nil
}

// SaveSettings atomically persists s to SettingsFile.
func (c *Config) SaveSettings(s Settings) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return trace.Wrap(err)
	}
	return atomicWrite(c.SettingsFile, b)
}

// ReposFromFile reads one repository base URL per non-blank, non-comment
// line of ArchivoRepos.
func (c *Config) ReposFromFile() ([]string, error) {
	return readLines(c.ArchivoRepos)
}

// Branch reads the single-line branch name from ArchivoRama, defaulting to
// "regular" if the file is absent or empty.
func (c *Config) Branch() (string, error) {
	lines, err := readLines(c.ArchivoRama)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "regular", nil
	}
	return lines[0], nil
}

func readLines(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, trace.Wrap(err)
	}
	var out []string
	for _, line := range splitLines(string(b)) {
		line = trimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}
