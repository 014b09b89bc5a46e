package sysexec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tpt-project/tpt/internal/tpterr"
)

func TestExecuteCapturesStdout(t *testing.T) {
	r := &Runner{IsRoot: true}
	res, err := r.Execute(context.Background(), []string{"echo", "hello"}, Options{})
	require.NoError(t, err)
	require.Equal(t, "hello\n", res.Stdout)
}

func TestExecuteNonZeroExitFails(t *testing.T) {
	r := &Runner{IsRoot: true}
	_, err := r.Execute(context.Background(), []string{"false"}, Options{})
	require.Error(t, err)
}

func TestExecuteMissingExecutableFails(t *testing.T) {
	r := &Runner{IsRoot: true}
	_, err := r.Execute(context.Background(), []string{"tpt-definitely-not-a-real-binary"}, Options{})
	require.Error(t, err)
}

func TestExecutePrependsSudoWhenNotRoot(t *testing.T) {
	r := &Runner{IsRoot: false}
	// We can't actually run sudo in CI, but we can at least check the
	// missing-executable path still reports SystemCommand with "sudo"
	// prefixed into the recorded command.
	_, err := r.Execute(context.Background(), []string{"tpt-definitely-not-a-real-binary"}, Options{AsRoot: true})
	require.Error(t, err)
	require.Equal(t, tpterr.SystemCommand, tpterr.KindOf(err))
	require.Contains(t, err.Error(), "sudo")
}

func TestCheckDependencyFindsShell(t *testing.T) {
	r := &Runner{}
	path, ok := r.CheckDependency("sh")
	require.True(t, ok)
	require.NotEmpty(t, path)
}

func TestCheckDependencyMissing(t *testing.T) {
	r := &Runner{}
	_, ok := r.CheckDependency("tpt-definitely-not-a-real-binary")
	require.False(t, ok)
}
