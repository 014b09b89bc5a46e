package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadSettingsMissingFileReturnsDefaults(t *testing.T) {
	c := &Config{SettingsFile: filepath.Join(t.TempDir(), "settings.json")}
	s, err := c.LoadSettings()
	require.NoError(t, err)
	require.Equal(t, DefaultSettings(), s)
}

func TestLoadSettingsMissingKeysKeepDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"use_rich": false}`), 0o644))

	c := &Config{SettingsFile: path}
	s, err := c.LoadSettings()
	require.NoError(t, err)

	require.False(t, s.UseRich)
	require.Equal(t, DefaultSettings().NetworkTimeout, s.NetworkTimeout)
	require.Equal(t, DefaultSettings().SSLVerify, s.SSLVerify)
}

func TestSaveThenLoadSettingsRoundTrips(t *testing.T) {
	dir := t.TempDir()
	c := &Config{SettingsFile: filepath.Join(dir, "settings.json")}

	want := Settings{
		UseRich:        false,
		ConfirmActions: false,
		AADPOEnabled:   true,
		NetworkTimeout: 30,
		SSLVerify:      false,
	}
	require.NoError(t, c.SaveSettings(want))

	got, err := c.LoadSettings()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestReposFromFileIgnoresCommentsAndBlanks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tpt-repos.list")
	content := "# comment\nhttps://repo.example.com\n\n  \nhttps://repo2.example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c := &Config{ArchivoRepos: path}
	repos, err := c.ReposFromFile()
	require.NoError(t, err)
	require.Equal(t, []string{"https://repo.example.com", "https://repo2.example.com"}, repos)
}

func TestBranchDefaultsToRegular(t *testing.T) {
	c := &Config{ArchivoRama: filepath.Join(t.TempDir(), "branch.txt")}
	branch, err := c.Branch()
	require.NoError(t, err)
	require.Equal(t, "regular", branch)
}
