package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/tpterr"
)

func TestInferFormatCompoundSuffixesWinOverSingle(t *testing.T) {
	f, ok := InferFormat("https://example.com/pkg-1.0.deb.xz")
	require.True(t, ok)
	require.Equal(t, tpt.FormatDebXz, f)

	f, ok = InferFormat("https://example.com/pkg-1.0.tar.gz")
	require.True(t, ok)
	require.Equal(t, tpt.FormatTarGz, f)

	f, ok = InferFormat("https://example.com/pkg-1.0.tar.xz")
	require.True(t, ok)
	require.Equal(t, tpt.FormatTarXz, f)
}

func TestInferFormatSingleSuffixes(t *testing.T) {
	cases := map[string]tpt.Format{
		"https://example.com/a.deb":      tpt.FormatDeb,
		"https://example.com/a.sh":       tpt.FormatSh,
		"https://example.com/a.AppImage": tpt.FormatAppImage,
		"https://example.com/a.rpm":      tpt.FormatRpm,
		"https://example.com/a.ps1":      tpt.FormatPs1,
		"https://example.com/a.exe":      tpt.FormatExe,
		"https://example.com/a.msi":      tpt.FormatMsi,
		"https://example.com/a.zip":      tpt.FormatMetaZip,
	}
	for url, want := range cases {
		got, ok := InferFormat(url)
		require.True(t, ok, url)
		require.Equal(t, want, got, url)
	}
}

func TestInferFormatUnknownSuffix(t *testing.T) {
	_, ok := InferFormat("https://example.com/a.unknownext")
	require.False(t, ok)
}

func TestForFormatEveryFormatResolves(t *testing.T) {
	formats := []tpt.Format{
		tpt.FormatDeb, tpt.FormatDebXz, tpt.FormatSh, tpt.FormatPy,
		tpt.FormatAppImage, tpt.FormatTarGz, tpt.FormatTarXz, tpt.FormatRpm,
		tpt.FormatPs1, tpt.FormatExe, tpt.FormatMsi, tpt.FormatFlatpak,
		tpt.FormatSnap, tpt.FormatAlpineApk, tpt.FormatAndroidApk, tpt.FormatApk,
		tpt.FormatNemasPatchZip, tpt.FormatMetaZip,
	}
	for _, f := range formats {
		h, err := ForFormat(f)
		require.NoError(t, err, f)
		require.NotNil(t, h)
	}
}

func TestForFormatUnsupportedReturnsUnsupportedFormatKind(t *testing.T) {
	_, err := ForFormat(tpt.Format("made-up"))
	require.Error(t, err)
	require.Equal(t, tpterr.UnsupportedFormat, tpterr.KindOf(err))
}

func TestForTagEveryHandlerTagResolves(t *testing.T) {
	tags := []tpt.HandlerTag{
		tpt.HandlerDeb, tpt.HandlerScript, tpt.HandlerAppImage, tpt.HandlerArchive,
		tpt.HandlerRpm, tpt.HandlerFlatpak, tpt.HandlerSnap, tpt.HandlerAlpineApk,
		tpt.HandlerAndroidApk, tpt.HandlerExe, tpt.HandlerMsi, tpt.HandlerPowershell,
		tpt.HandlerNemasPatchZip, tpt.HandlerMetaZip,
	}
	for _, tag := range tags {
		h, err := ForTag(tag)
		require.NoError(t, err, tag)
		require.Equal(t, tag, h.Tag())
	}
}

func TestDebXzHandlerTagRoutesUninstallToDebHandler(t *testing.T) {
	h := &DebXzHandler{}
	require.Equal(t, tpt.HandlerDeb, h.Tag())
}
