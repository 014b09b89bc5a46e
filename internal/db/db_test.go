package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	tpt "github.com/tpt-project/tpt"
)

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	d, err := Open(filepath.Join(t.TempDir(), "installed.json"), nil)
	require.NoError(t, err)
	require.Empty(t, d.All())
}

func TestOpenCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "installed.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	d, err := Open(path, nil)
	require.NoError(t, err)
	require.Empty(t, d.All())
}

func TestSaveThenGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "installed.json")
	d, err := Open(path, nil)
	require.NoError(t, err)

	rec := tpt.InstalledRecord{
		Version: "1.0",
		Source:  tpt.SourceTPT,
		InstallationDetails: tpt.InstallationDetails{
			Handler:     tpt.HandlerScript,
			InstallPath: "/usr/local/bin/hello",
		},
	}
	require.NoError(t, d.Save("hello", rec))

	got, ok := d.Get("hello")
	require.True(t, ok)
	require.Equal(t, rec, got)

	// A fresh Open of the same path observes the persisted record.
	reopened, err := Open(path, nil)
	require.NoError(t, err)
	got2, ok := reopened.Get("hello")
	require.True(t, ok)
	require.Equal(t, rec, got2)
}

func TestRemoveDeletesRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "installed.json")
	d, err := Open(path, nil)
	require.NoError(t, err)

	require.NoError(t, d.Save("hello", tpt.InstalledRecord{Version: "1.0"}))
	require.NoError(t, d.Remove("hello"))

	_, ok := d.Get("hello")
	require.False(t, ok)

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	_, ok = reopened.Get("hello")
	require.False(t, ok)
}

func TestDBConsistencyEveryRecordHasAHandlerTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "installed.json")
	d, err := Open(path, nil)
	require.NoError(t, err)

	require.NoError(t, d.Save("hello", tpt.InstalledRecord{
		InstallationDetails: tpt.InstallationDetails{Handler: tpt.HandlerScript},
	}))
	require.NoError(t, d.Save("firefox-appimage", tpt.InstalledRecord{
		InstallationDetails: tpt.InstallationDetails{Handler: tpt.HandlerAppImage},
	}))

	known := map[tpt.HandlerTag]bool{
		tpt.HandlerDeb: true, tpt.HandlerScript: true, tpt.HandlerAppImage: true,
		tpt.HandlerArchive: true, tpt.HandlerRpm: true, tpt.HandlerFlatpak: true,
		tpt.HandlerSnap: true, tpt.HandlerAlpineApk: true, tpt.HandlerAndroidApk: true,
		tpt.HandlerExe: true, tpt.HandlerMsi: true, tpt.HandlerPowershell: true,
		tpt.HandlerNemasPatchZip: true, tpt.HandlerMetaZip: true,
	}
	for name, rec := range d.All() {
		require.Truef(t, known[rec.InstallationDetails.Handler], "record %s has unknown handler tag %q", name, rec.InstallationDetails.Handler)
	}
}
