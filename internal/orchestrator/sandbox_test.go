package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/require"

	tpt "github.com/tpt-project/tpt"
)

func TestSandboxInstallCommandKnownFormats(t *testing.T) {
	cases := []struct {
		format tpt.Format
		argv   []string
	}{
		{tpt.FormatDeb, []string{"dpkg", "-i", "__PKG__"}},
		{tpt.FormatDebXz, []string{"dpkg", "-i", "__PKG__"}},
		{tpt.FormatRpm, []string{"rpm", "-i", "__PKG__"}},
		{tpt.FormatAlpineApk, []string{"apk", "add", "--allow-untrusted", "__PKG__"}},
	}
	for _, c := range cases {
		argv, ok := sandboxInstallCommand(tpt.Descriptor{Format: c.format})
		require.True(t, ok)
		require.Equal(t, c.argv, argv)
	}
}

func TestSandboxInstallCommandUnsupportedFormat(t *testing.T) {
	_, ok := sandboxInstallCommand(tpt.Descriptor{Format: tpt.FormatAppImage})
	require.False(t, ok)
}

func TestSubstitutePackagePathReplacesPlaceholderOnly(t *testing.T) {
	out := substitutePackagePath([]string{"dpkg", "-i", "__PKG__"}, "/root/app.deb")
	require.Equal(t, []string{"dpkg", "-i", "/root/app.deb"}, out)
}

func TestHandlerTagForMapsSandboxableFormats(t *testing.T) {
	require.Equal(t, tpt.HandlerDeb, handlerTagFor(tpt.FormatDeb))
	require.Equal(t, tpt.HandlerRpm, handlerTagFor(tpt.FormatRpm))
	require.Equal(t, tpt.HandlerAlpineApk, handlerTagFor(tpt.FormatAlpineApk))
	require.Equal(t, tpt.HandlerTag(""), handlerTagFor(tpt.FormatAppImage))
}

func TestSandboxUninstallCommandPerHandler(t *testing.T) {
	require.Equal(t, []string{"dpkg", "-P", "foo"}, sandboxUninstallCommand(tpt.HandlerDeb, "foo"))
	require.Equal(t, []string{"rpm", "-e", "foo"}, sandboxUninstallCommand(tpt.HandlerRpm, "foo"))
	require.Equal(t, []string{"apk", "del", "foo"}, sandboxUninstallCommand(tpt.HandlerAlpineApk, "foo"))
	require.Nil(t, sandboxUninstallCommand(tpt.HandlerAppImage, "foo"))
}
